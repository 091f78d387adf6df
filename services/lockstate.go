package services

// LockState is a sparse three-level boolean array keyed by item paths,
// marking tree items already consumed by a bill or an abstract. It is a
// pure projection: Project.Update rebuilds it in full, it is never edited
// independently.
type LockState struct {
	flags [][][]bool
}

// NewLockState builds a lock state with the given paths set.
func NewLockState(paths []TreePath) *LockState {
	l := &LockState{}
	for _, p := range paths {
		l.Set(p, true)
	}
	return l
}

func (l *LockState) resize(path TreePath) {
	for len(l.flags) <= path[0] {
		l.flags = append(l.flags, nil)
	}
	for len(l.flags[path[0]]) <= path[1] {
		l.flags[path[0]] = append(l.flags[path[0]], nil)
	}
	for len(l.flags[path[0]][path[1]]) <= path[2] {
		l.flags[path[0]][path[1]] = append(l.flags[path[0]][path[1]], false)
	}
}

// Set marks or clears an item path, growing the array as needed. Paths
// with a negative component cannot address an item and are ignored.
func (l *LockState) Set(path TreePath, value bool) {
	if len(path) != 3 || path[0] < 0 || path[1] < 0 || path[2] < 0 {
		return
	}
	l.resize(path)
	l.flags[path[0]][path[1]][path[2]] = value
}

// Get reports the flag at path; ok is false when the path lies outside
// the array.
func (l *LockState) Get(path TreePath) (value, ok bool) {
	if len(path) != 3 || path[0] < 0 || path[0] >= len(l.flags) {
		return false, false
	}
	if path[1] < 0 || path[1] >= len(l.flags[path[0]]) {
		return false, false
	}
	if path[2] < 0 || path[2] >= len(l.flags[path[0]][path[1]]) {
		return false, false
	}
	return l.flags[path[0]][path[1]][path[2]], true
}

// Paths lists every set path in array order.
func (l *LockState) Paths() []TreePath {
	var paths []TreePath
	for i, level1 := range l.flags {
		for j, level2 := range level1 {
			for k, flag := range level2 {
				if flag {
					paths = append(paths, TreePath{i, j, k})
				}
			}
		}
	}
	return paths
}

// Union returns a new lock state with every path set in either operand.
func (l *LockState) Union(other *LockState) *LockState {
	out := NewLockState(l.Paths())
	for _, p := range other.Paths() {
		out.Set(p, true)
	}
	return out
}

// Difference returns a new lock state with other's paths cleared.
func (l *LockState) Difference(other *LockState) *LockState {
	out := NewLockState(l.Paths())
	for _, p := range other.Paths() {
		out.Set(p, false)
	}
	return out
}
