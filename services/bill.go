package services

import (
	"log"
	"math"
)

// BillType distinguishes bills computed from measurements from bills whose
// figures are entered manually.
type BillType int

const (
	BillNormal BillType = iota + 1
	BillCustom
)

// BillData is the persisted portion of a bill. Everything on Bill outside
// Data is derived by Update and never serialized.
type BillData struct {
	PrevBill     int // index into the project bill list, -1 for none
	CmbName      string
	Title        string
	Date         string
	StartingPage int

	// Paths to billed measurement items, depth 3.
	MItems []TreePath

	PartPercentage       map[string]float64
	ExcessPartPercentage map[string]float64
	ExcessRates          map[string]float64

	// Manually entered figures, used only by custom bills.
	Qty          map[string]float64
	NormalAmount map[string]float64
	ExcessAmount map[string]float64

	Type BillType
}

// NewBillData returns an empty bill record of the given type.
func NewBillData(t BillType) *BillData {
	return &BillData{
		PrevBill:             -1,
		StartingPage:         1,
		PartPercentage:       map[string]float64{},
		ExcessPartPercentage: map[string]float64{},
		ExcessRates:          map[string]float64{},
		Qty:                  map[string]float64{},
		NormalAmount:         map[string]float64{},
		ExcessAmount:         map[string]float64{},
		Type:                 t,
	}
}

// billSource is one measured quantity contributing to an agreement item.
// CmbIndex -1 marks a quantity brought forward from the previous bill, in
// which case Path is nil and Slot unused.
type billSource struct {
	CmbIndex int
	Path     TreePath
	Slot     int
	Qty      float64
}

// Bill couples persisted bill data with the figures derived from the
// measurement books and the previous bill in the chain.
type Bill struct {
	Data *BillData

	ItemSources  map[string][]billSource
	NormalQty    map[string]float64
	ExcessQty    map[string]float64
	NormalAmount map[string]float64
	ExcessAmount map[string]float64

	CmbRefs         map[int]bool
	TotalAmount     float64
	SincePrevAmount float64

	prevBill *Bill
}

func NewBill(data *BillData) *Bill {
	return &Bill{Data: data}
}

// Prev returns the resolved previous bill, nil for the first in a chain.
func (b *Bill) Prev() *Bill { return b.prevBill }

// ItemQty returns the total billed quantity of an agreement item.
func (b *Bill) ItemQty(itemNo string) float64 {
	var total float64
	for _, src := range b.ItemSources[itemNo] {
		total += src.Qty
	}
	return total
}

func (b *Bill) clearDerived() {
	b.ItemSources = map[string][]billSource{}
	b.NormalQty = map[string]float64{}
	b.ExcessQty = map[string]float64{}
	b.NormalAmount = map[string]float64{}
	b.ExcessAmount = map[string]float64{}
	b.CmbRefs = map[int]bool{}
	b.TotalAmount = 0
	b.SincePrevAmount = 0
	b.prevBill = nil
}

// Update recomputes all derived figures from the schedule, the measurement
// books and the bill chain. Bills earlier in the chain must already be
// updated when this is called.
func (b *Bill) Update(schedule *Schedule, cmbs []*Cmb, bills []*Bill) {
	itemNos := schedule.ItemNos()
	b.clearDerived()

	if b.Data.Type == BillCustom {
		for itemNo, qty := range b.Data.Qty {
			b.ItemSources[itemNo] = []billSource{{CmbIndex: -1, Qty: qty}}
		}
		var total float64
		for itemNo, amount := range b.Data.NormalAmount {
			b.NormalAmount[itemNo] = amount
			total += amount
		}
		for itemNo, amount := range b.Data.ExcessAmount {
			b.ExcessAmount[itemNo] = amount
			total += amount
		}
		b.TotalAmount = Round2(total)
		b.SincePrevAmount = b.TotalAmount
		return
	}

	if b.Data.PrevBill >= 0 && b.Data.PrevBill < len(bills) {
		b.prevBill = bills[b.Data.PrevBill]
	}
	for _, itemNo := range itemNos {
		b.ItemSources[itemNo] = []billSource{}
		if _, ok := b.Data.PartPercentage[itemNo]; !ok {
			b.Data.PartPercentage[itemNo] = 100
			b.Data.ExcessPartPercentage[itemNo] = 100
			b.Data.ExcessRates[itemNo] = 0
		}
	}

	// Quantities brought forward from the previous bill.
	if b.prevBill != nil {
		for _, itemNo := range itemNos {
			if qty := b.prevBill.ItemQty(itemNo); qty != 0 {
				b.ItemSources[itemNo] = append(b.ItemSources[itemNo],
					billSource{CmbIndex: -1, Qty: qty})
			}
		}
	}

	// Quantities from the billed measurement items.
	for _, mitem := range b.Data.MItems {
		node, err := nodeAt(cmbs, mitem)
		if err != nil {
			log.Printf("bill: skipping unresolved measurement item: %v", err)
			continue
		}
		var source *CustomItem
		switch item := node.(type) {
		case *HeadingItem:
			continue
		case *CustomItem:
			source = item
		case *AbstractItem:
			source = item.Synthetic()
		default:
			continue
		}
		if source == nil {
			continue
		}
		totals := source.Total()
		for slot, itemNo := range source.ItemNos {
			if itemNo == "" {
				continue
			}
			if _, ok := b.ItemSources[itemNo]; !ok {
				log.Printf("bill: item no %q at %v not in schedule, not updating in bill", itemNo, mitem)
				continue
			}
			b.ItemSources[itemNo] = append(b.ItemSources[itemNo], billSource{
				CmbIndex: mitem[0],
				Path:     mitem.Clone(),
				Slot:     slot,
				Qty:      totals[slot],
			})
		}
	}

	// Split quantities at the deviation threshold and price both parts.
	for _, itemNo := range itemNos {
		item := schedule.Lookup(itemNo)
		totalQty := b.ItemQty(itemNo)
		threshold := item.Qty * (1 + 0.01*item.ExcessRatePercent)
		if totalQty > threshold {
			if IsIntegerUnit(item.Unit) {
				b.NormalQty[itemNo] = math.Floor(threshold)
			} else {
				b.NormalQty[itemNo] = Round2(threshold)
			}
			b.ExcessQty[itemNo] = totalQty - b.NormalQty[itemNo]
		} else {
			b.NormalQty[itemNo] = totalQty
			b.ExcessQty[itemNo] = 0
		}
		b.NormalAmount[itemNo] = Round2(b.NormalQty[itemNo] * b.Data.PartPercentage[itemNo] * 0.01 * item.Rate)
		b.ExcessAmount[itemNo] = Round2(b.ExcessQty[itemNo] * b.Data.ExcessPartPercentage[itemNo] * 0.01 * b.Data.ExcessRates[itemNo])

		for _, src := range b.ItemSources[itemNo] {
			if src.CmbIndex >= 0 {
				b.CmbRefs[src.CmbIndex] = true
			}
		}
	}

	var total float64
	for _, amount := range b.NormalAmount {
		total += amount
	}
	for _, amount := range b.ExcessAmount {
		total += amount
	}
	b.TotalAmount = Round2(total)
	if b.prevBill != nil {
		b.SincePrevAmount = Round2(b.TotalAmount - b.prevBill.TotalAmount)
	} else {
		b.SincePrevAmount = b.TotalAmount
	}
}
