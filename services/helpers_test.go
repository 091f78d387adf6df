package services

import (
	"bytes"
	"testing"
)

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// newTestProject builds a small project: two schedule items, one
// measurement book holding a heading and a measured item against item 1
// (quantity 150 against a contracted 100 at 30% deviation), and a
// completion record.
func newTestProject(t *testing.T) *Project {
	t.Helper()
	typ, err := LookupItemType("nnnnnT")
	if err != nil {
		t.Fatalf("lookup item type: %v", err)
	}

	p := NewProject()
	p.Schedule.Append(NewScheduleItem("1", "Earthwork in excavation", "cum", "100", "100", "", "30"))
	p.Schedule.Append(NewScheduleItem("2", "Supply of fittings", "nos", "50", "10", "", "30"))

	item := NewCustomItem(typ)
	item.ItemNos[0] = "1"
	item.AppendRecord(NewRecord([]string{"Trench A", "80", "", "", "", ""}, typ))
	item.AppendRecord(NewRecord([]string{"Trench B", "70", "", "", "", ""}, typ))

	meas := &Measurement{
		Date: "01-04-2025",
		Items: []MeasurementItem{
			&HeadingItem{Remark: "Foundation work"},
			item,
		},
	}
	cmb := &Cmb{
		Name:    "1/2025",
		Entries: []CmbEntry{meas, &Completion{Date: "30-04-2025"}},
	}
	p.Cmbs = append(p.Cmbs, cmb)
	p.Update()
	return p
}

// testBillData bills the measured item of newTestProject with an excess
// rate of 80 on item 1.
func testBillData() *BillData {
	data := NewBillData(BillNormal)
	data.CmbName = "1/2025"
	data.Title = "First RA Bill"
	data.Date = "30-04-2025"
	data.MItems = []TreePath{{0, 0, 1}}
	data.PartPercentage["1"] = 100
	data.ExcessPartPercentage["1"] = 100
	data.ExcessRates["1"] = 80
	return data
}

// addTestBill appends a bill over the fixture's measured item and
// refreshes derived data.
func addTestBill(t *testing.T, p *Project) *Bill {
	t.Helper()
	p.Bills = append(p.Bills, NewBill(testBillData()))
	p.Update()
	return p.Bills[len(p.Bills)-1]
}
