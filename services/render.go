package services

import (
	"fmt"
	"os"
	"path/filepath"
)

// RenderStatus is the outcome class of a render request.
type RenderStatus int

const (
	RenderOK RenderStatus = iota
	RenderWarning
	RenderError
)

func (s RenderStatus) String() string {
	switch s {
	case RenderOK:
		return "ok"
	case RenderWarning:
		return "warning"
	case RenderError:
		return "error"
	}
	return "unknown"
}

// RenderResult reports one render outcome for the caller's interface.
type RenderResult struct {
	Status  RenderStatus `json:"status"`
	Message string       `json:"message"`
}

// RenderCmb writes the documents of the measurement book at row into
// folder (cmb_N.pdf and cmb_N.xlsx, 1-based). With recursive set, every
// book whose abstracts pull from this one and every bill billing items
// from it is re-rendered too; the first error aborts the cascade.
func (p *Project) RenderCmb(folder string, row int, globals map[string]string, recursive bool) RenderResult {
	p.Update()
	if row < 0 || row >= len(p.Cmbs) {
		return RenderResult{RenderError, fmt.Sprintf("no measurement book at row %d", row)}
	}
	cmb := p.Cmbs[row]

	pdf, err := GenerateCmbPDF(cmb, p.Schedule, globals)
	if err != nil {
		return RenderResult{RenderError, fmt.Sprintf("rendering of CMB No.%s failed: %v", cmb.Name, err)}
	}
	if err := writeRenderFile(folder, fmt.Sprintf("cmb_%d.pdf", row+1), pdf); err != nil {
		return RenderResult{RenderError, err.Error()}
	}
	xlsx, err := GenerateCmbExcel(cmb, p.Schedule)
	if err != nil {
		return RenderResult{RenderError, fmt.Sprintf("rendering of CMB No.%s failed: %v", cmb.Name, err)}
	}
	if err := writeRenderFile(folder, fmt.Sprintf("cmb_%d.xlsx", row+1), xlsx); err != nil {
		return RenderResult{RenderError, err.Error()}
	}

	if recursive {
		for cmbNo := range p.Cmbs {
			if p.CmbRefs[cmbNo][row] {
				if res := p.RenderCmb(folder, cmbNo, globals, false); res.Status == RenderError {
					return res
				}
			}
		}
		for billNo, bill := range p.Bills {
			if bill.CmbRefs[row] {
				if res := p.RenderBill(folder, billNo, globals, false); res.Status == RenderError {
					return res
				}
			}
		}
	}
	return RenderResult{RenderOK, fmt.Sprintf("CMB No.%s rendered successfully", cmb.Name)}
}

// RenderBill writes the documents of the bill at row into folder
// (bill_N.pdf and bill_N.xlsx, 1-based). Custom bills are not rendered.
// With recursive set, the books the bill draws from and the previous bill
// in the chain are re-rendered first.
func (p *Project) RenderBill(folder string, row int, globals map[string]string, recursive bool) RenderResult {
	p.Update()
	if row < 0 || row >= len(p.Bills) {
		return RenderResult{RenderError, fmt.Sprintf("no bill at row %d", row)}
	}
	bill := p.Bills[row]
	if bill.Data.Type != BillNormal {
		return RenderResult{RenderWarning, "rendering of custom bill not supported"}
	}

	if recursive {
		// Books billed directly, plus books their abstracts pull from.
		refs := map[int]bool{}
		for cmbNo := range bill.CmbRefs {
			refs[cmbNo] = true
			for dep := range p.CmbRefs[cmbNo] {
				refs[dep] = true
			}
		}
		for cmbNo := range refs {
			if res := p.RenderCmb(folder, cmbNo, globals, false); res.Status == RenderError {
				return res
			}
		}
		if prev := bill.Prev(); prev != nil && prev.Data.Type == BillNormal {
			if res := p.RenderBill(folder, bill.Data.PrevBill, globals, false); res.Status == RenderError {
				return res
			}
		}
	}

	pdf, err := GenerateBillPDF(bill, p.Schedule, globals)
	if err != nil {
		return RenderResult{RenderError, fmt.Sprintf("rendering of bill %s failed: %v", bill.Data.Title, err)}
	}
	if err := writeRenderFile(folder, fmt.Sprintf("bill_%d.pdf", row+1), pdf); err != nil {
		return RenderResult{RenderError, err.Error()}
	}
	xlsx, err := GenerateBillExcel(bill, p.Schedule, globals)
	if err != nil {
		return RenderResult{RenderError, fmt.Sprintf("rendering of bill %s failed: %v", bill.Data.Title, err)}
	}
	if err := writeRenderFile(folder, fmt.Sprintf("bill_%d.xlsx", row+1), xlsx); err != nil {
		return RenderResult{RenderError, err.Error()}
	}
	return RenderResult{RenderOK, fmt.Sprintf("bill %s rendered successfully", bill.Data.Title)}
}

func writeRenderFile(folder, name string, data []byte) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create output folder: %v", err)
	}
	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %v", name, err)
	}
	return nil
}
