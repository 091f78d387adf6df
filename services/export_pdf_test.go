package services

import (
	"testing"
)

func TestGenerateCmbPDF(t *testing.T) {
	p := newTestProject(t)
	globals := map[string]string{
		"nameofwork": "Construction of office building",
		"agency":     "M/s Example Constructions",
	}

	result, err := GenerateCmbPDF(p.Cmbs[0], p.Schedule, globals)
	if err != nil {
		t.Fatalf("GenerateCmbPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateCmbPDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateCmbPDFWithAbstract(t *testing.T) {
	p := newTestProject(t)
	addTestAbstract(t, p, []TreePath{{0, 0, 1}})

	result, err := GenerateCmbPDF(p.Cmbs[1], p.Schedule, nil)
	if err != nil {
		t.Fatalf("GenerateCmbPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateCmbPDF() returned empty bytes")
	}
}

func TestGenerateBillPDF(t *testing.T) {
	p := newTestProject(t)
	bill := addTestBill(t, p)

	result, err := GenerateBillPDF(bill, p.Schedule, map[string]string{
		"nameofwork": "Construction of office building",
	})
	if err != nil {
		t.Fatalf("GenerateBillPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateBillPDF() returned empty bytes")
	}
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateBillPDFWithCarryForward(t *testing.T) {
	p := newTestProject(t)
	addTestBill(t, p)
	second := NewBill(testBillData())
	second.Data.MItems = nil
	second.Data.PrevBill = 0
	p.Bills = append(p.Bills, second)
	p.Update()

	result, err := GenerateBillPDF(second, p.Schedule, nil)
	if err != nil {
		t.Fatalf("GenerateBillPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateBillPDF() returned empty bytes")
	}
}

func TestColumnWidthsStayPositive(t *testing.T) {
	for _, n := range []int{1, 3, 9, 13, 20} {
		widths := columnWidths(n)
		if len(widths) != n {
			t.Fatalf("columnWidths(%d): %d entries", n, len(widths))
		}
		for i, w := range widths {
			if w < 1 {
				t.Errorf("columnWidths(%d)[%d] = %d, want >= 1", n, i, w)
			}
		}
	}
}
