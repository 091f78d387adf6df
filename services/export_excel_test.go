package services

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateCmbExcel(t *testing.T) {
	p := newTestProject(t)

	result, err := GenerateCmbExcel(p.Cmbs[0], p.Schedule)
	if err != nil {
		t.Fatalf("GenerateCmbExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateCmbExcel() returned empty bytes")
	}

	// Verify it's a valid Excel file
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 || sheets[0] != "CMB 1/2025" {
		t.Fatalf("expected sheet name 'CMB 1/2025', got %v", sheets)
	}

	title, _ := f.GetCellValue(sheets[0], "A1")
	if !strings.Contains(title, "1/2025") {
		t.Errorf("title cell = %q, want the book name", title)
	}

	// The measured item's table and totals must appear somewhere.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	var sawCaption, sawTotal, sawCompletion bool
	for _, row := range rows {
		for _, cell := range row {
			switch {
			case cell == "Description":
				sawCaption = true
			case strings.Contains(cell, "Total of item 1"):
				sawTotal = true
			case strings.Contains(cell, "Completion recorded on 30-04-2025"):
				sawCompletion = true
			}
		}
	}
	if !sawCaption {
		t.Error("caption row missing from sheet")
	}
	if !sawTotal {
		t.Error("item total row missing from sheet")
	}
	if !sawCompletion {
		t.Error("completion row missing from sheet")
	}
}

func TestGenerateCmbExcelWithAbstract(t *testing.T) {
	p := newTestProject(t)
	addTestAbstract(t, p, []TreePath{{0, 0, 1}})

	result, err := GenerateCmbExcel(p.Cmbs[1], p.Schedule)
	if err != nil {
		t.Fatalf("GenerateCmbExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatal(err)
	}
	var sawSource bool
	for _, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell, AbstractSourcePrefix) {
				sawSource = true
			}
		}
	}
	if !sawSource {
		t.Error("abstract sheet misses the quantity brought forward row")
	}
}

func TestGenerateBillExcel(t *testing.T) {
	p := newTestProject(t)
	bill := addTestBill(t, p)
	globals := map[string]string{
		"nameofwork": "Construction of office building",
		"agency":     "M/s Example Constructions",
		"agmntno":    "12/2025-26",
	}

	result, err := GenerateBillExcel(bill, p.Schedule, globals)
	if err != nil {
		t.Fatalf("GenerateBillExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Data" || sheets[1] != "Deviation" {
		t.Fatalf("sheets = %v, want [Data Deviation]", sheets)
	}

	head, _ := f.GetCellValue("Data", "A1")
	if head != "Agmnt.No" {
		t.Errorf("Data!A1 = %q, want Agmnt.No", head)
	}

	// Item 1 row: total 150 split 130/20.
	totalQty, _ := f.GetCellValue("Data", "D2")
	if totalQty != "150" {
		t.Errorf("Data!D2 = %q, want 150", totalQty)
	}
	normalQty, _ := f.GetCellValue("Data", "E2")
	if normalQty != "130" {
		t.Errorf("Data!E2 = %q, want 130", normalQty)
	}
	excessQty, _ := f.GetCellValue("Data", "F2")
	if excessQty != "20" {
		t.Errorf("Data!F2 = %q, want 20", excessQty)
	}

	work, _ := f.GetCellValue("Deviation", "C3")
	if work != "Construction of office building" {
		t.Errorf("Deviation!C3 = %q, want the name of work", work)
	}
}
