package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DevLimitPercent is the deviation percentage above which a quantity
// overrun is pulled into the deviation statement.
const DevLimitPercent = 10.0

// GenerateCmbExcel creates the measurement book spreadsheet: the title
// block, one dated section per measurement with its item tables, and the
// completion records. Returns the file contents as a byte slice.
func GenerateCmbExcel(cmb *Cmb, schedule *Schedule) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "CMB " + cmb.Name
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "A", 45); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "J", 12); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", "J1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("Computation of Measurement Book No. "+cmb.Name))
	f.SetCellStyle(sheetName, "A1", "J1", titleStyle)

	row := 3
	for _, entry := range cmb.Entries {
		switch e := entry.(type) {
		case *Completion:
			cell, _ := excelize.CoordinatesToCellName(1, row)
			f.SetCellValue(sheetName, cell, "Completion recorded on "+e.Date)
			f.SetCellStyle(sheetName, cell, cell, sectionStyle)
			row += 2
		case *Measurement:
			cell, _ := excelize.CoordinatesToCellName(1, row)
			f.SetCellValue(sheetName, cell, "Measurements taken on "+e.Date)
			f.SetCellStyle(sheetName, cell, cell, sectionStyle)
			row += 2
			for _, mi := range e.Items {
				row, err = writeMeasurementItem(f, sheetName, mi, row, headerStyle, cellStyle, totalStyle)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// writeMeasurementItem writes one item table and returns the next free
// row.
func writeMeasurementItem(f *excelize.File, sheetName string, mi MeasurementItem, row int, headerStyle, cellStyle, totalStyle int) (int, error) {
	var item *CustomItem
	switch it := mi.(type) {
	case *HeadingItem:
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(it.Remark))
		return row + 2, nil
	case *CustomItem:
		item = it
	case *AbstractItem:
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if it.Synthetic() == nil {
			f.SetCellValue(sheetName, cell, "Abstract of measurements: not defined")
			return row + 2, nil
		}
		f.SetCellValue(sheetName, cell, "Abstract of measurements")
		row++
		item = it.Synthetic()
	}

	if item.Remark != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheetName, cell, sanitizeExcelCell("Remarks: "+item.Remark))
		row++
	}

	// Caption row.
	for col, caption := range item.Type.Captions {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheetName, cell, caption)
	}
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(item.Type.Width(), row)
	f.SetCellStyle(sheetName, start, end, headerStyle)
	row++

	// Record rows.
	for recNo, rec := range item.Records {
		for col, value := range rec.Rendered(recNo) {
			if value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if s, ok := value.(string); ok {
				value = sanitizeExcelCell(s)
			}
			f.SetCellValue(sheetName, cell, value)
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(item.Type.Width(), row)
		f.SetCellStyle(sheetName, start, end, cellStyle)
		row++
	}

	// Per-slot totals.
	totals := item.Total()
	for slot, itemNo := range item.ItemNos {
		if itemNo == "" {
			continue
		}
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		qtyCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, labelCell, sanitizeExcelCell("Total of item "+itemNo))
		f.SetCellValue(sheetName, qtyCell, totals[slot])
		if slot < len(item.ItemRemarks) && item.ItemRemarks[slot] != "" {
			remarkCell, _ := excelize.CoordinatesToCellName(3, row)
			f.SetCellValue(sheetName, remarkCell, sanitizeExcelCell(item.ItemRemarks[slot]))
		}
		f.SetCellStyle(sheetName, labelCell, qtyCell, totalStyle)
		row++
	}

	// User data rows.
	for i, caption := range item.Type.UserDataCaptions {
		if i >= len(item.UserData) || item.UserData[i] == "" {
			continue
		}
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, labelCell, sanitizeExcelCell(caption))
		f.SetCellValue(sheetName, valueCell, sanitizeExcelCell(item.UserData[i]))
		row++
	}
	return row + 1, nil
}

// GenerateBillExcel creates the bill workbook: a Data sheet with the
// per-item quantity split and amounts, and a Deviation sheet comparing
// billed quantities against the agreement. Returns the file contents as a
// byte slice.
func GenerateBillExcel(bill *Bill, schedule *Schedule, globals map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, "Data"); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	if err := f.SetColWidth("Data", "B", "B", 50); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	headers := []string{"Agmnt.No", "Description", "Unit", "Total Qty", "Below Dev Qty",
		"Above Dev Qty", "Agmnt FR", "Agmnt PR", "Excess FR", "Excess PR",
		"Total Bel Dev", "Total Above Dev",
		"Since Prev below Dev", "Since Prev Above Dev", "Dev Limit"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Data", cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle("Data", "A1", last, headerStyle)

	for i, item := range schedule.Items {
		row := i + 2
		setDataCell(f, 1, row, sanitizeExcelCell(item.ItemNo))
		setDataCell(f, 2, row, sanitizeExcelCell(item.Description))
		setDataCell(f, 3, row, sanitizeExcelCell(item.Unit))
		setDataCell(f, 7, row, item.Rate)
		setDataCell(f, 15, row, item.ExcessRatePercent)

		itemNo := item.ItemNo
		if _, measured := bill.ItemSources[itemNo]; measured {
			sincePrevNormal := bill.NormalAmount[itemNo]
			sincePrevExcess := bill.ExcessAmount[itemNo]
			if prev := bill.Prev(); prev != nil {
				sincePrevNormal -= prev.NormalAmount[itemNo]
				sincePrevExcess -= prev.ExcessAmount[itemNo]
			}
			setDataCell(f, 4, row, bill.ItemQty(itemNo))
			setDataCell(f, 5, row, bill.NormalQty[itemNo])
			setDataCell(f, 6, row, bill.ExcessQty[itemNo])
			setDataCell(f, 8, row, Round2(bill.Data.PartPercentage[itemNo]*0.01*item.Rate))
			setDataCell(f, 9, row, bill.Data.ExcessRates[itemNo])
			setDataCell(f, 10, row, Round2(bill.Data.ExcessPartPercentage[itemNo]*0.01*bill.Data.ExcessRates[itemNo]))
			setDataCell(f, 11, row, bill.NormalAmount[itemNo])
			setDataCell(f, 12, row, bill.ExcessAmount[itemNo])
			setDataCell(f, 13, row, sincePrevNormal)
			setDataCell(f, 14, row, sincePrevExcess)
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(headers), row)
		f.SetCellStyle("Data", start, end, cellStyle)
	}

	if err := writeDeviationSheet(f, bill, schedule, globals, headerStyle, cellStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func setDataCell(f *excelize.File, col, row int, value any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	f.SetCellValue("Data", cell, value)
}

// writeDeviationSheet adds the deviation statement: one row per priced
// agreement item with billed quantity, deviation and the amounts of the
// overrun past the deviation limit.
func writeDeviationSheet(f *excelize.File, bill *Bill, schedule *Schedule, globals map[string]string, headerStyle, cellStyle int) error {
	const sheet = "Deviation"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create deviation sheet: %w", err)
	}
	if err := f.SetColWidth(sheet, "C", "C", 50); err != nil {
		return fmt.Errorf("set col width: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Deviation Statement")
	f.SetCellValue(sheet, "A3", "Name of Work:")
	f.SetCellValue(sheet, "C3", sanitizeExcelCell(globals["nameofwork"]))
	f.SetCellValue(sheet, "A4", "Agency:")
	f.SetCellValue(sheet, "C4", sanitizeExcelCell(globals["agency"]))
	f.SetCellValue(sheet, "A5", "Agreement No:")
	f.SetCellValue(sheet, "C5", sanitizeExcelCell(globals["agmntno"]))

	headers := []string{"Srl", "Agmnt.No", "Description", "Unit", "Agmnt Qty",
		"Billed Qty", "Deviation", "Deviation %", "Qty Over Agmnt", "Excess Qty",
		"Qty Over Limit", "Rate", "Amount Over Limit", "Excess Rate", "Excess Amount", "Total"}
	headerRow := 7
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheet, cell, h)
	}
	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	end, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	f.SetCellStyle(sheet, start, end, headerStyle)

	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		f.SetCellValue(sheet, cell, value)
	}

	row := headerRow + 1
	srl := 0
	var grandTotal float64
	for _, item := range schedule.Items {
		if item.Qty <= 0 {
			continue
		}
		srl++
		set(1, row, srl)
		set(2, row, sanitizeExcelCell(item.ItemNo))
		set(3, row, sanitizeExcelCell(item.Description))
		set(4, row, sanitizeExcelCell(item.Unit))
		set(5, row, item.Qty)
		set(12, row, item.Rate)

		billedQty := 0.0
		excessQty := 0.0
		if _, measured := bill.ItemSources[item.ItemNo]; measured {
			billedQty = bill.ItemQty(item.ItemNo)
			excessQty = bill.ExcessQty[item.ItemNo]
		}
		deviation := billedQty - item.Qty
		percentDev := Round2(deviation / item.Qty * 100)
		set(6, row, billedQty)
		set(7, row, deviation)
		set(8, row, percentDev)

		overAgmnt := bill.NormalQty[item.ItemNo] - item.Qty
		if overAgmnt > 0 {
			set(9, row, overAgmnt)
		}
		if excessQty > 0 {
			set(10, row, excessQty)
		}

		overLimit := 0.0
		if percentDev > DevLimitPercent || percentDev < -DevLimitPercent {
			overLimit = overAgmnt
		}
		amountOverLimit := Round2(overLimit * item.Rate)
		excessRate := bill.Data.ExcessRates[item.ItemNo]
		excessAmount := Round2(excessQty * excessRate)
		total := Round2(abs(amountOverLimit) + abs(excessAmount))
		set(11, row, overLimit)
		set(13, row, amountOverLimit)
		set(14, row, excessRate)
		set(15, row, excessAmount)
		set(16, row, total)
		grandTotal += total

		rowStart, _ := excelize.CoordinatesToCellName(1, row)
		rowEnd, _ := excelize.CoordinatesToCellName(len(headers), row)
		f.SetCellStyle(sheet, rowStart, rowEnd, cellStyle)
		row++
	}
	set(15, row, "Grand Total")
	set(16, row, Round2(grandTotal))
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
