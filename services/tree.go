package services

import "fmt"

// Cmb is one measurement book: a named, ordered list of measurement
// groups and completion records.
type Cmb struct {
	Name    string
	Entries []CmbEntry
}

// CmbEntry is the closed set of nodes a CMB owns: Measurement or
// Completion.
type CmbEntry interface {
	isCmbEntry()
}

// Measurement is a dated group of measurement items.
type Measurement struct {
	Date  string
	Items []MeasurementItem
}

// Completion records the date of completion; it owns no items.
type Completion struct {
	Date string
}

func (*Measurement) isCmbEntry() {}
func (*Completion) isCmbEntry()  {}

// MeasurementItem is the closed set of item variants inside a
// Measurement.
type MeasurementItem interface {
	isMeasurementItem()
}

// HeadingItem is organizational text; it contributes no quantities.
type HeadingItem struct {
	Remark string
}

// CustomItem is a typed record set measured against up to
// Type.ItemSlots schedule items.
type CustomItem struct {
	Type        *ItemType
	ItemNos     []string // one per slot, "" when unused
	Records     []*Record
	Remark      string
	ItemRemarks []string
	UserData    []string
}

// AbstractItem derives its content from other custom items elsewhere in
// the tree, referenced by path. The synthetic item is a cache rebuilt on
// every update.
type AbstractItem struct {
	Refs   []TreePath
	Remark string

	synthetic *CustomItem
}

func (*HeadingItem) isMeasurementItem()  {}
func (*CustomItem) isMeasurementItem()   {}
func (*AbstractItem) isMeasurementItem() {}

// NewCustomItem builds an empty item of the given type with unset item
// slots and default user data.
func NewCustomItem(t *ItemType) *CustomItem {
	item := &CustomItem{
		Type:        t,
		ItemNos:     make([]string, t.ItemSlots),
		ItemRemarks: make([]string, t.ItemSlots),
	}
	if len(t.UserDataDefault) > 0 {
		item.UserData = append([]string(nil), t.UserDataDefault...)
	}
	return item
}

// Total returns the item's per-slot measured totals.
func (c *CustomItem) Total() []float64 {
	if c.Type == nil || c.Type.Total == nil {
		return nil
	}
	return c.Type.Total(c.Records, c.UserData)
}

func (c *CustomItem) AppendRecord(rec *Record) {
	c.Records = append(c.Records, rec)
}

// Synthetic returns the cached derived item, or nil when the abstract has
// no references ("not defined").
func (a *AbstractItem) Synthetic() *CustomItem { return a.synthetic }

// Total returns the synthetic item's totals, empty when not defined.
func (a *AbstractItem) Total() []float64 {
	if a.synthetic == nil {
		return nil
	}
	return a.synthetic.Total()
}

// Structural edits. Callers repair held references first; these only
// splice the owning slice.

func (c *Cmb) InsertEntry(index int, e CmbEntry) {
	c.Entries = append(c.Entries, nil)
	copy(c.Entries[index+1:], c.Entries[index:])
	c.Entries[index] = e
}

func (c *Cmb) RemoveEntry(index int) {
	c.Entries = append(c.Entries[:index], c.Entries[index+1:]...)
}

func (m *Measurement) InsertItem(index int, item MeasurementItem) {
	m.Items = append(m.Items, nil)
	copy(m.Items[index+1:], m.Items[index:])
	m.Items[index] = item
}

func (m *Measurement) RemoveItem(index int) {
	m.Items = append(m.Items[:index], m.Items[index+1:]...)
}

// nodeAt resolves a path to the node it addresses: *Cmb, CmbEntry or
// MeasurementItem depending on depth.
func nodeAt(cmbs []*Cmb, path TreePath) (any, error) {
	if len(path) < 1 || len(path) > 3 {
		return nil, fmt.Errorf("path %v: depth must be 1 to 3", path)
	}
	if path[0] < 0 || path[0] >= len(cmbs) {
		return nil, fmt.Errorf("path %v: no CMB at index %d", path, path[0])
	}
	cmb := cmbs[path[0]]
	if len(path) == 1 {
		return cmb, nil
	}
	if path[1] < 0 || path[1] >= len(cmb.Entries) {
		return nil, fmt.Errorf("path %v: no entry at index %d", path, path[1])
	}
	entry := cmb.Entries[path[1]]
	if len(path) == 2 {
		return entry, nil
	}
	meas, ok := entry.(*Measurement)
	if !ok {
		return nil, fmt.Errorf("path %v: entry is not a measurement", path)
	}
	if path[2] < 0 || path[2] >= len(meas.Items) {
		return nil, fmt.Errorf("path %v: no item at index %d", path, path[2])
	}
	return meas.Items[path[2]], nil
}

// customItemAt resolves a depth-3 path to a custom item; it reports false
// for any other node kind or an invalid path.
func customItemAt(cmbs []*Cmb, path TreePath) (*CustomItem, bool) {
	node, err := nodeAt(cmbs, path)
	if err != nil {
		return nil, false
	}
	item, ok := node.(*CustomItem)
	return item, ok
}

// measurementAt resolves a depth-2 path to a measurement group.
func measurementAt(cmbs []*Cmb, path TreePath) (*Measurement, error) {
	node, err := nodeAt(cmbs, path[:2])
	if err != nil {
		return nil, err
	}
	meas, ok := node.(*Measurement)
	if !ok {
		return nil, fmt.Errorf("path %v: entry is not a measurement", path)
	}
	return meas, nil
}
