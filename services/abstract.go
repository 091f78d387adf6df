package services

import "log"

// AbstractSourcePrefix marks the description field of a summary record
// with the path it was pulled from, so renderers can label the row as
// quantity brought forward instead of repeating the source content.
const AbstractSourcePrefix = "Qty B/F "

// update rebuilds the synthetic custom item from the referenced tree
// items. The first reference's descriptor drives the synthetic item;
// later references are exported through their own descriptor and loaded
// into that layout unvalidated. With no references the abstract resolves
// to its "not defined" state.
func (a *AbstractItem) update(cmbs []*Cmb) {
	if len(a.Refs) == 0 {
		a.synthetic = nil
		return
	}
	first, ok := customItemAt(cmbs, a.Refs[0])
	if !ok {
		log.Printf("abstract: reference %v does not address a custom item", a.Refs[0])
		a.synthetic = nil
		return
	}

	syn := NewCustomItem(first.Type)
	copy(syn.ItemNos, first.ItemNos)
	copy(syn.ItemRemarks, first.ItemRemarks)
	syn.Remark = a.Remark

	for _, ref := range a.Refs {
		item, ok := customItemAt(cmbs, ref)
		if !ok {
			log.Printf("abstract: reference %v does not address a custom item, skipping", ref)
			continue
		}
		if item.Type == nil || item.Type.ExportAbstract == nil {
			log.Printf("abstract: item type of %v has no export summary, skipping", ref)
			continue
		}
		fields := item.Type.ExportAbstract(item.Records, item.UserData)
		fields[0] = AbstractSourcePrefix + ref.String()
		syn.AppendRecord(NewRecord(fields, syn.Type))
	}
	a.synthetic = syn
}
