package services

import "strings"

// descriptionMaxLength bounds the extended description used in bill
// documents; longer text is elided in the middle.
const descriptionMaxLength = 1000

// ScheduleItem is one priced row in the schedule of rates. Rows with an
// empty unit, zero rate and zero quantity act as heading rows whose
// description flows into the extended description of their sub-items.
type ScheduleItem struct {
	ItemNo            string  `json:"itemNo"`
	Description       string  `json:"description"`
	Unit              string  `json:"unit"`
	Rate              float64 `json:"rate"`
	Qty               float64 `json:"qty"`
	Reference         string  `json:"reference"`
	ExcessRatePercent float64 `json:"excessRatePercent"`

	// Derived by Schedule.UpdateValues.
	ExtendedDescription        string `json:"-"`
	ExtendedDescriptionLimited string `json:"-"`
}

// NewScheduleItem builds a schedule row from raw string fields, parsing
// the numeric columns tolerantly. The default excess rate is 30 percent.
func NewScheduleItem(itemNo, description, unit, rate, qty, reference, excessPercent string) *ScheduleItem {
	item := &ScheduleItem{
		ItemNo:      itemNo,
		Description: description,
		Unit:        unit,
		Rate:        Round2(evalOrZero(rate)),
		Qty:         evalOrZero(qty),
		Reference:   reference,
	}
	if strings.TrimSpace(excessPercent) == "" {
		item.ExcessRatePercent = 30
	} else {
		item.ExcessRatePercent = evalOrZero(excessPercent)
	}
	return item
}

// Schedule is the ordered schedule of rates for the work.
type Schedule struct {
	Items []*ScheduleItem
}

func (s *Schedule) Append(item *ScheduleItem) {
	s.Items = append(s.Items, item)
}

func (s *Schedule) Insert(index int, item *ScheduleItem) {
	s.Items = append(s.Items, nil)
	copy(s.Items[index+1:], s.Items[index:])
	s.Items[index] = item
}

func (s *Schedule) Remove(index int) {
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
}

func (s *Schedule) Replace(index int, item *ScheduleItem) {
	s.Items[index] = item
}

func (s *Schedule) Len() int { return len(s.Items) }

// Lookup returns the schedule row with the given item number, or nil.
func (s *Schedule) Lookup(itemNo string) *ScheduleItem {
	for _, item := range s.Items {
		if item.ItemNo == itemNo {
			return item
		}
	}
	return nil
}

// ItemNos returns the billable item numbers in schedule order: rows with
// a non-empty item number and a non-zero contracted quantity.
func (s *Schedule) ItemNos() []string {
	var nos []string
	for _, item := range s.Items {
		if item.ItemNo != "" && item.Qty != 0 {
			nos = append(nos, item.ItemNo)
		}
	}
	return nos
}

// UpdateValues recomputes every row's extended description. A heading row
// (no qty, unit or rate) with an item number starts a description block;
// heading rows without an item number continue the block; a priced row
// whose item number extends the current block's number inherits the block
// description as a prefix.
func (s *Schedule) UpdateValues() {
	extended := ""
	headNo := ""
	for _, item := range s.Items {
		switch {
		case item.Qty == 0 && item.Unit == "" && item.Rate == 0:
			if item.ItemNo != "" {
				headNo = item.ItemNo
				extended = item.Description
			} else {
				extended = extended + "\n" + item.Description
			}
			item.ExtendedDescription = item.Description
		case headNo != "" && strings.HasPrefix(item.ItemNo, headNo):
			item.ExtendedDescription = extended + "\n" + item.Description
		default:
			item.ExtendedDescription = item.Description
			headNo = item.ItemNo
			extended = item.Description
		}

		item.ExtendedDescriptionLimited = item.ExtendedDescription
		if len(item.ExtendedDescription) > descriptionMaxLength {
			half := descriptionMaxLength / 2
			item.ExtendedDescriptionLimited = item.ExtendedDescription[:half] +
				" ... " + item.ExtendedDescription[len(item.ExtendedDescription)-half:]
		}
	}
}
