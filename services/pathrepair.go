package services

// refSnapshot captures the held references a structural edit rewrote, so
// undoing the edit can restore them exactly instead of recomputing the
// inverse shift (which would resurrect orphaned references incorrectly).
type refSnapshot struct {
	billRows  []int
	billPaths [][]TreePath
	absPaths  []TreePath
	absRefs   [][]TreePath
}

// repairHeldPaths rewrites every held reference in bills and abstract
// items for a structural edit at edit: an insertion shifts references at
// or after the edit point, a deletion shifts later references back and
// drops references into the removed subtree. Call it before inserting and
// before deleting, while paths still address the pre-edit tree. The
// returned snapshot holds the prior state of every reference list that
// changed.
func repairHeldPaths(bills []*Bill, cmbs []*Cmb, edit TreePath, insert bool) *refSnapshot {
	snap := &refSnapshot{}

	for row, bill := range bills {
		repaired, changed := repairRefList(bill.Data.MItems, edit, insert)
		if changed {
			snap.billRows = append(snap.billRows, row)
			snap.billPaths = append(snap.billPaths, bill.Data.MItems)
			bill.Data.MItems = repaired
		}
	}

	forEachAbstract(cmbs, func(path TreePath, item *AbstractItem) {
		repaired, changed := repairRefList(item.Refs, edit, insert)
		if changed {
			snap.absPaths = append(snap.absPaths, path)
			snap.absRefs = append(snap.absRefs, item.Refs)
			item.Refs = repaired
		}
	})
	return snap
}

// restoreHeldPaths reverses repairHeldPaths. The snapshot's abstract item
// paths address the tree as it stands when this is called, so the caller
// must first undo the structural edit itself.
func restoreHeldPaths(bills []*Bill, cmbs []*Cmb, snap *refSnapshot) {
	for i, row := range snap.billRows {
		bills[row].Data.MItems = snap.billPaths[i]
	}
	for i, path := range snap.absPaths {
		if item, ok := abstractItemAt(cmbs, path); ok {
			item.Refs = snap.absRefs[i]
		}
	}
}

// repairRefList applies repairRef across a reference list, dropping
// orphaned entries. The input slice is left untouched.
func repairRefList(refs []TreePath, edit TreePath, insert bool) ([]TreePath, bool) {
	out := make([]TreePath, 0, len(refs))
	changed := false
	for _, ref := range refs {
		repaired, ok := repairRef(ref, edit, insert)
		if !ok {
			changed = true
			continue
		}
		if !repaired.Equal(ref) {
			changed = true
		}
		out = append(out, repaired)
	}
	if !changed {
		return refs, false
	}
	return out, true
}

func forEachAbstract(cmbs []*Cmb, fn func(path TreePath, item *AbstractItem)) {
	for p1, cmb := range cmbs {
		for p2, entry := range cmb.Entries {
			meas, ok := entry.(*Measurement)
			if !ok {
				continue
			}
			for p3, mi := range meas.Items {
				if abs, ok := mi.(*AbstractItem); ok {
					fn(TreePath{p1, p2, p3}, abs)
				}
			}
		}
	}
}

func abstractItemAt(cmbs []*Cmb, path TreePath) (*AbstractItem, bool) {
	node, err := nodeAt(cmbs, path)
	if err != nil {
		return nil, false
	}
	item, ok := node.(*AbstractItem)
	return item, ok
}
