package services

import (
	"fmt"
	"strings"
)

// TreePath addresses a node in the CMB forest by position: [cmb],
// [cmb, measurement] or [cmb, measurement, item]. Paths are positions,
// not identities; every structural edit shifts the paths of the nodes
// after it, so long-lived references (bill items, abstract references,
// both always depth 3) must be repaired on every edit.
type TreePath []int

func (p TreePath) Clone() TreePath {
	if p == nil {
		return nil
	}
	out := make(TreePath, len(p))
	copy(out, p)
	return out
}

func (p TreePath) Equal(o TreePath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p TreePath) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func clonePaths(paths []TreePath) []TreePath {
	out := make([]TreePath, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}

// repairRef applies the uniform compare-and-shift rule to one held
// reference for a structural edit at edit. The compared segment is the
// edit's last one; segments before it must match for the reference to be
// affected at all. Insertion shifts references at or after the edit point
// up by one; deletion shifts references after it down by one and orphans
// any reference under (or at) the deleted node. It returns the corrected
// path and whether the reference survives.
func repairRef(ref, edit TreePath, insert bool) (TreePath, bool) {
	if len(ref) < len(edit) {
		// A shallower reference can never reach the edit's depth; held
		// references are deeper than or equal to any edit.
		return ref, true
	}
	depth := len(edit) - 1
	for i := 0; i < depth; i++ {
		if ref[i] != edit[i] {
			return ref, true
		}
	}
	switch {
	case insert && ref[depth] >= edit[depth]:
		out := ref.Clone()
		out[depth]++
		return out, true
	case !insert && ref[depth] == edit[depth]:
		return nil, false
	case !insert && ref[depth] > edit[depth]:
		out := ref.Clone()
		out[depth]--
		return out, true
	}
	return ref, true
}
