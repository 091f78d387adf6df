package services

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType tags how one column of a custom measurement item is
// interpreted.
type ColumnType int

const (
	// ColNumber is a counted quantity, evaluated and rendered as an integer.
	ColNumber ColumnType = iota + 1
	// ColLength is a measured quantity, evaluated as a float expression.
	ColLength
	// ColDescription is free text; it carries no quantity.
	ColDescription
	// ColComputed is derived from the other columns by the type's callback.
	ColComputed
)

// ComputedFunc derives the display value of a computed column from the raw
// record fields. row is the 1-based record position, -1 when not rendering
// a particular row.
type ComputedFunc func(fields []string, row int) string

// ItemType describes one kind of custom measurement item: its column
// layout, computed-column callbacks and total functions. The core treats
// every function here as pure.
type ItemType struct {
	Name        string
	DisplayName string

	// ItemSlots is how many schedule item numbers one item of this type
	// can be measured against; the per-item totals have this length.
	ItemSlots   int
	Captions    []string
	ColumnTypes []ColumnType

	// Computed holds one callback per column; nil entries mean the column
	// is not computed.
	Computed []ComputedFunc

	// RecordTotal maps one record's evaluated values to its contribution
	// per item slot.
	RecordTotal func(values []float64) []float64

	// Total folds all records (and any user data) into per-slot totals.
	Total func(records []*Record, userData []string) []float64

	// ExportAbstract reduces all records to a single summary row in this
	// type's own column layout, used by abstract resolution and bill
	// carry-forward.
	ExportAbstract func(records []*Record, userData []string) []string

	UserDataCaptions []string
	UserDataDefault  []string
}

// Width returns the number of columns in one record.
func (t *ItemType) Width() int { return len(t.ColumnTypes) }

var itemTypes = map[string]*ItemType{}

// RegisterItemType adds a descriptor to the registry. Registering the
// same name twice panics; descriptors are process-lifetime configuration.
func RegisterItemType(t *ItemType) {
	if _, dup := itemTypes[t.Name]; dup {
		panic("services: duplicate item type " + t.Name)
	}
	itemTypes[t.Name] = t
}

// LookupItemType resolves a descriptor by name.
func LookupItemType(name string) (*ItemType, error) {
	t, ok := itemTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", name)
	}
	return t, nil
}

// ItemTypeNames lists the registered descriptor names.
func ItemTypeNames() []string {
	names := make([]string, 0, len(itemTypes))
	for name := range itemTypes {
		names = append(names, name)
	}
	return names
}

// sumRecordTotals folds each record's per-slot contribution, rounding to
// 3 decimals.
func sumRecordTotals(slots int) func(records []*Record, userData []string) []float64 {
	return func(records []*Record, _ []string) []float64 {
		total := make([]float64, slots)
		for _, rec := range records {
			if rec == nil {
				continue
			}
			for i, v := range rec.Total() {
				if i < slots {
					total[i] += v
				}
			}
		}
		for i := range total {
			total[i] = Round3(total[i])
		}
		return total
	}
}

// columnSums builds the generic export-summary row: numeric columns carry
// the column-wise sum of all records, description and computed columns are
// left blank.
func columnSums(t *ItemType) func(records []*Record, userData []string) []string {
	return func(records []*Record, _ []string) []string {
		sums := make([]float64, t.Width())
		for _, rec := range records {
			if rec == nil {
				continue
			}
			for i, v := range rec.Values() {
				if i < len(sums) {
					sums[i] += v
				}
			}
		}
		fields := make([]string, t.Width())
		for i, ct := range t.ColumnTypes {
			switch ct {
			case ColNumber:
				fields[i] = strconv.Itoa(int(sums[i]))
			case ColLength:
				fields[i] = strconv.FormatFloat(Round3(sums[i]), 'f', -1, 64)
			}
		}
		return fields
	}
}

func init() {
	// Item LLLLL: description, a computed breakup column and five length
	// columns, measured against up to five schedule items.
	lllll := &ItemType{
		Name:        "LLLLL",
		DisplayName: "Item LLLLL",
		ItemSlots:   5,
		Captions:    []string{"Description", "Breakup", "L1", "L2", "L3", "L4", "L5"},
		ColumnTypes: []ColumnType{ColDescription, ColComputed, ColLength, ColLength, ColLength, ColLength, ColLength},
		RecordTotal: func(values []float64) []float64 {
			return values[2:7]
		},
	}
	lllll.Computed = []ComputedFunc{nil, breakupOf(2, 7), nil, nil, nil, nil, nil}
	lllll.Total = sumRecordTotals(5)
	lllll.ExportAbstract = columnSums(lllll)
	RegisterItemType(lllll)

	// Item NNNNNNNN: description plus eight measured columns against eight
	// schedule items.
	n8 := &ItemType{
		Name:        "NNNNNNNN",
		DisplayName: "Item NNNNNNNN",
		ItemSlots:   8,
		Captions:    []string{"Description", "N1", "N2", "N3", "N4", "N5", "N6", "N7", "N8"},
		ColumnTypes: []ColumnType{ColDescription, ColLength, ColLength, ColLength, ColLength, ColLength, ColLength, ColLength, ColLength},
		Computed:    make([]ComputedFunc, 9),
		RecordTotal: func(values []float64) []float64 {
			return values[1:9]
		},
	}
	n8.Total = sumRecordTotals(8)
	n8.ExportAbstract = columnSums(n8)
	RegisterItemType(n8)

	// Item nnnnnT: description, five measured columns and a computed
	// per-record total, all against a single schedule item.
	nt := &ItemType{
		Name:        "nnnnnT",
		DisplayName: "Item nnnnnT",
		ItemSlots:   1,
		Captions:    []string{"Description", "N1", "N2", "N3", "N4", "N5", "Total"},
		ColumnTypes: []ColumnType{ColDescription, ColLength, ColLength, ColLength, ColLength, ColLength, ColComputed},
		RecordTotal: func(values []float64) []float64 {
			var sum float64
			for _, v := range values[1:6] {
				sum += v
			}
			return []float64{sum}
		},
	}
	nt.Computed = []ComputedFunc{nil, nil, nil, nil, nil, nil, rowTotalOf(1, 6)}
	nt.Total = sumRecordTotals(1)
	nt.ExportAbstract = columnSums(nt)
	RegisterItemType(nt)
}

// breakupOf renders the non-empty fields of [from,to) as a bracketed
// comma list, e.g. "[2.5,,3]".
func breakupOf(from, to int) ComputedFunc {
	return func(fields []string, _ int) string {
		parts := make([]string, 0, to-from)
		for i := from; i < to && i < len(fields); i++ {
			f := fields[i]
			if f == "" || f == "0" {
				f = ""
			}
			parts = append(parts, f)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
}

// rowTotalOf sums the evaluated fields of [from,to), rounded to 3
// decimals.
func rowTotalOf(from, to int) ComputedFunc {
	return func(fields []string, _ int) string {
		var sum float64
		for i := from; i < to && i < len(fields); i++ {
			sum += evalOrZero(fields[i])
		}
		return strconv.FormatFloat(Round3(sum), 'f', -1, 64)
	}
}
