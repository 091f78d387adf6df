package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenderCmb(t *testing.T) {
	p := newTestProject(t)
	folder := t.TempDir()

	res := p.RenderCmb(folder, 0, map[string]string{"nameofwork": "Test work"}, false)
	if res.Status != RenderOK {
		t.Fatalf("RenderCmb() status = %v, message %q", res.Status, res.Message)
	}
	for _, name := range []string{"cmb_1.pdf", "cmb_1.xlsx"} {
		if _, err := os.Stat(filepath.Join(folder, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestRenderCmbBadRow(t *testing.T) {
	p := newTestProject(t)

	res := p.RenderCmb(t.TempDir(), 5, nil, false)
	if res.Status != RenderError {
		t.Fatalf("RenderCmb() status = %v, want RenderError", res.Status)
	}
	if res.Message == "" {
		t.Error("expected non-empty error message")
	}
}

func TestRenderCmbRecursive(t *testing.T) {
	p := newTestProject(t)
	addTestAbstract(t, p, []TreePath{{0, 0, 1}})
	addTestBill(t, p)
	folder := t.TempDir()

	// Book 0 feeds the abstract in book 1 and the bill, so a recursive
	// render of book 0 must produce all three document pairs.
	res := p.RenderCmb(folder, 0, nil, true)
	if res.Status != RenderOK {
		t.Fatalf("RenderCmb() status = %v, message %q", res.Status, res.Message)
	}
	for _, name := range []string{"cmb_1.pdf", "cmb_2.xlsx", "bill_1.pdf", "bill_1.xlsx"} {
		if _, err := os.Stat(filepath.Join(folder, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestRenderBill(t *testing.T) {
	p := newTestProject(t)
	addTestBill(t, p)
	folder := t.TempDir()

	res := p.RenderBill(folder, 0, nil, false)
	if res.Status != RenderOK {
		t.Fatalf("RenderBill() status = %v, message %q", res.Status, res.Message)
	}
	for _, name := range []string{"bill_1.pdf", "bill_1.xlsx"} {
		if _, err := os.Stat(filepath.Join(folder, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestRenderBillCustom(t *testing.T) {
	p := newTestProject(t)
	data := NewBillData(BillCustom)
	data.Title = "Custom Bill"
	data.Qty["1"] = 10
	p.Bills = append(p.Bills, NewBill(data))
	p.Update()

	res := p.RenderBill(t.TempDir(), 0, nil, false)
	if res.Status != RenderWarning {
		t.Fatalf("RenderBill() status = %v, want RenderWarning", res.Status)
	}
}

func TestRenderBillRecursive(t *testing.T) {
	p := newTestProject(t)
	bill := addTestBill(t, p)
	folder := t.TempDir()

	res := p.RenderBill(folder, 0, nil, true)
	if res.Status != RenderOK {
		t.Fatalf("RenderBill() status = %v, message %q", res.Status, res.Message)
	}
	// The billed book is rendered ahead of the bill itself.
	if len(bill.CmbRefs) == 0 {
		t.Fatal("fixture bill references no measurement book")
	}
	if _, err := os.Stat(filepath.Join(folder, "cmb_1.pdf")); err != nil {
		t.Errorf("expected referenced book output: %v", err)
	}
}
