package services

import "strconv"

// Record is one measured row of a custom item. Fields holds the raw
// strings as entered (length expressions included); values holds the
// per-column evaluation under the owning type's column layout.
type Record struct {
	Fields []string

	typ    *ItemType
	values []float64
}

// NewRecord evaluates fields against the type's column layout. Short rows
// are padded with empty fields; malformed numeric fields degrade to zero.
func NewRecord(fields []string, t *ItemType) *Record {
	padded := make([]string, t.Width())
	copy(padded, fields)
	values := make([]float64, t.Width())
	for i, ct := range t.ColumnTypes {
		switch ct {
		case ColNumber:
			values[i] = float64(int(evalOrZero(padded[i])))
		case ColLength:
			values[i] = evalOrZero(padded[i])
		}
	}
	return &Record{Fields: padded, typ: t, values: values}
}

// Values returns the evaluated column values. Description and computed
// columns are zero.
func (r *Record) Values() []float64 { return r.values }

// Total returns this record's contribution per item slot.
func (r *Record) Total() []float64 { return r.typ.RecordTotal(r.values) }

// Rendered returns display values per column for spreadsheet output:
// computed columns run their callback (numeric results as numbers),
// description columns pass through, numeric columns yield their value and
// empty cells yield nil. row is the 1-based record position.
func (r *Record) Rendered(row int) []any {
	out := make([]any, r.typ.Width())
	for i, ct := range r.typ.ColumnTypes {
		switch ct {
		case ColComputed:
			var fn ComputedFunc
			if i < len(r.typ.Computed) {
				fn = r.typ.Computed[i]
			}
			if fn == nil {
				continue
			}
			s := fn(r.Fields, row)
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				out[i] = f
			} else {
				out[i] = s
			}
		case ColDescription:
			if r.Fields[i] != "" {
				out[i] = r.Fields[i]
			}
		case ColNumber:
			if r.Fields[i] != "" {
				out[i] = int(r.values[i])
			}
		case ColLength:
			if r.Fields[i] != "" {
				out[i] = r.values[i]
			}
		}
	}
	return out
}
