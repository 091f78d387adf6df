package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func newPdfBuilder() core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()
	return maroto.New(cfg)
}

// GenerateCmbPDF creates the measurement book details document: the book
// title, a dated section per measurement with its item tables and totals,
// and the completion records. It returns the raw PDF bytes or an error.
func GenerateCmbPDF(cmb *Cmb, schedule *Schedule, globals map[string]string) ([]byte, error) {
	m := newPdfBuilder()

	addDocumentHeader(m, "Computation of Measurement Book No. "+cmb.Name, globals)

	for _, entry := range cmb.Entries {
		switch e := entry.(type) {
		case *Completion:
			addSectionRow(m, "Completion recorded on "+e.Date)
		case *Measurement:
			addSectionRow(m, "Measurements taken on "+e.Date)
			for _, mi := range e.Items {
				addMeasurementItemRows(m, mi)
			}
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateBillPDF creates the abstract of cost for a normal bill: one
// block per billed agreement item with its quantity sources (including
// quantities brought forward from the previous bill), the normal/excess
// split and the running totals.
func GenerateBillPDF(bill *Bill, schedule *Schedule, globals map[string]string) ([]byte, error) {
	m := newPdfBuilder()

	addDocumentHeader(m, "Abstract of Cost: "+bill.Data.Title, globals)
	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("CMB No. "+bill.Data.CmbName, props.Text{Size: 9, Align: align.Left})),
			col.New(6).Add(text.New("Date: "+bill.Data.Date, props.Text{Size: 9, Align: align.Right})),
		),
	)
	m.AddRows(row.New(4))

	for _, itemNo := range schedule.ItemNos() {
		sources := bill.ItemSources[itemNo]
		if len(sources) == 0 {
			continue
		}
		item := schedule.Lookup(itemNo)
		addBillItemBlock(m, bill, item, sources)
	}

	addBillSummary(m, bill)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addDocumentHeader(m core.Maroto, title string, globals map[string]string) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)
	if work := globals["nameofwork"]; work != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New("Name of Work: "+work, props.Text{
						Size:  9,
						Align: align.Left,
						Color: &props.Color{Red: 80, Green: 80, Blue: 80},
					}),
				),
			),
		)
	}
	if agency := globals["agency"]; agency != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New("Agency: "+agency, props.Text{
						Size:  9,
						Align: align.Left,
						Color: &props.Color{Red: 80, Green: 80, Blue: 80},
					}),
				),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addSectionRow(m core.Maroto, label string) {
	m.AddRows(row.New(4))
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(label, props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)
}

// addMeasurementItemRows renders one measurement item as a table: caption
// row, record rows under the item's column layout, then per-slot totals.
func addMeasurementItemRows(m core.Maroto, mi MeasurementItem) {
	var item *CustomItem
	switch it := mi.(type) {
	case *HeadingItem:
		m.AddRows(
			row.New(7).Add(
				col.New(12).Add(
					text.New(it.Remark, props.Text{
						Size:  9,
						Style: fontstyle.Italic,
						Align: align.Left,
					}),
				),
			),
		)
		return
	case *CustomItem:
		item = it
	case *AbstractItem:
		if it.Synthetic() == nil {
			m.AddRows(
				row.New(7).Add(
					col.New(12).Add(
						text.New("Abstract of measurements: not defined", props.Text{
							Size:  9,
							Align: align.Left,
						}),
					),
				),
			)
			return
		}
		addSectionRow(m, "Abstract of measurements")
		item = it.Synthetic()
	}

	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerCell := props.Cell{BackgroundColor: headerBg}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}

	widths := columnWidths(item.Type.Width())
	headerCols := make([]core.Col, 0, item.Type.Width())
	for i, caption := range item.Type.Captions {
		headerCols = append(headerCols,
			col.New(widths[i]).Add(text.New(caption, headerText)).WithStyle(&headerCell))
	}
	m.AddRows(row.New(7).Add(headerCols...))

	bodyText := props.Text{Size: 7, Align: align.Center}
	leftText := bodyText
	leftText.Align = align.Left
	for recNo, rec := range item.Records {
		cols := make([]core.Col, 0, item.Type.Width())
		for i, value := range rec.Rendered(recNo) {
			s := ""
			switch v := value.(type) {
			case nil:
			case string:
				s = v
			case int:
				s = fmt.Sprintf("%d", v)
			case float64:
				s = FormatQty(v)
			}
			style := bodyText
			if item.Type.ColumnTypes[i] == ColDescription {
				style = leftText
			}
			cols = append(cols, col.New(widths[i]).Add(text.New(s, style)))
		}
		m.AddRows(row.New(6).Add(cols...))
	}

	totalText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
	totals := item.Total()
	for slot, itemNo := range item.ItemNos {
		if itemNo == "" {
			continue
		}
		m.AddRows(
			row.New(6).Add(
				col.New(8).Add(text.New("Total of item "+itemNo, totalText)),
				col.New(4).Add(text.New(FormatQty(totals[slot]), props.Text{
					Size:  8,
					Style: fontstyle.Bold,
					Align: align.Right,
				})),
			),
		)
	}
	m.AddRows(row.New(3))
}

// addBillItemBlock renders one agreement item of the bill abstract: its
// quantity sources, the split at the deviation threshold and both
// amounts.
func addBillItemBlock(m core.Maroto, bill *Bill, item *ScheduleItem, sources []billSource) {
	itemNo := item.ItemNo
	addSectionRow(m, "Item "+itemNo+" @ "+FormatINR(item.Rate)+" per "+item.Unit)
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(item.ExtendedDescriptionLimited, props.Text{
					Size:  8,
					Align: align.Left,
				}),
			),
		),
	)

	srcText := props.Text{Size: 8, Align: align.Left}
	qtyText := props.Text{Size: 8, Align: align.Right}
	for _, src := range sources {
		label := AbstractSourcePrefix + "previous bill"
		if src.CmbIndex >= 0 {
			label = AbstractSourcePrefix + src.Path.String() + fmt.Sprintf(":%d", src.Slot+1)
		}
		m.AddRows(
			row.New(5).Add(
				col.New(8).Add(text.New(label, srcText)),
				col.New(2).Add(text.New(FormatQty(src.Qty), qtyText)),
				col.New(2).Add(text.New(item.Unit, srcText)),
			),
		)
	}

	rows := [][2]string{
		{"Total quantity", FormatQty(bill.ItemQty(itemNo))},
		{"Quantity at agreement rate", FormatQty(bill.NormalQty[itemNo])},
		{"Amount at agreement rate", FormatINR(bill.NormalAmount[itemNo])},
	}
	if bill.ExcessQty[itemNo] > 0 {
		rows = append(rows,
			[2]string{"Quantity above deviation limit", FormatQty(bill.ExcessQty[itemNo])},
			[2]string{"Amount at excess rate " + FormatINR(bill.Data.ExcessRates[itemNo]), FormatINR(bill.ExcessAmount[itemNo])},
		)
	}
	labelText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	valueText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	for _, r := range rows {
		m.AddRows(
			row.New(5).Add(
				col.New(9).Add(text.New(r[0], labelText)),
				col.New(3).Add(text.New(r[1], valueText)),
			),
		)
	}
}

func addBillSummary(m core.Maroto, bill *Bill) {
	m.AddRows(row.New(6))
	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}
	labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	prevAmount := 0.0
	if prev := bill.Prev(); prev != nil {
		prevAmount = prev.TotalAmount
	}
	entries := [][2]string{
		{"Total value of work done", FormatINR(bill.TotalAmount)},
		{"Value of previous bill", FormatINR(prevAmount)},
		{"Value since previous bill", FormatINR(bill.SincePrevAmount)},
	}
	for _, e := range entries {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(e[0], labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(e[1], labelStyle)).WithStyle(summaryCell),
			),
		)
	}
}

// columnWidths spreads a table over maroto's 12-column grid, giving the
// first (description) column the slack.
func columnWidths(n int) []int {
	widths := make([]int, n)
	if n == 0 {
		return widths
	}
	per := 12 / n
	if per < 1 {
		per = 1
	}
	used := 0
	for i := 1; i < n; i++ {
		widths[i] = per
		used += per
	}
	widths[0] = 12 - used
	if widths[0] < 1 {
		widths[0] = 1
	}
	return widths
}
