package services

import (
	"reflect"
	"testing"
)

func TestLockStateSetGet(t *testing.T) {
	l := NewLockState(nil)
	l.Set(TreePath{1, 2, 3}, true)

	if v, ok := l.Get(TreePath{1, 2, 3}); !ok || !v {
		t.Errorf("Get after Set = (%v, %v), want (true, true)", v, ok)
	}
	if v, ok := l.Get(TreePath{1, 2, 0}); !ok || v {
		t.Errorf("Get on grown but unset slot = (%v, %v), want (false, true)", v, ok)
	}
	if _, ok := l.Get(TreePath{5, 0, 0}); ok {
		t.Error("Get outside the array: want ok == false")
	}
	if _, ok := l.Get(TreePath{1, 2}); ok {
		t.Error("Get on a depth-2 path: want ok == false")
	}
}

func TestLockStatePaths(t *testing.T) {
	paths := []TreePath{{0, 0, 1}, {0, 1, 0}, {2, 0, 0}}
	l := NewLockState(paths)

	if got := l.Paths(); !reflect.DeepEqual(got, paths) {
		t.Errorf("Paths() = %v, want %v", got, paths)
	}
}

func TestLockStateUnionDifference(t *testing.T) {
	a := NewLockState([]TreePath{{0, 0, 0}, {0, 0, 1}})
	b := NewLockState([]TreePath{{0, 0, 1}, {1, 0, 0}})

	union := a.Union(b)
	want := []TreePath{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}}
	if got := union.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Union().Paths() = %v, want %v", got, want)
	}

	diff := a.Difference(b)
	want = []TreePath{{0, 0, 0}}
	if got := diff.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Difference().Paths() = %v, want %v", got, want)
	}

	// Operands unchanged.
	if got := a.Paths(); !reflect.DeepEqual(got, []TreePath{{0, 0, 0}, {0, 0, 1}}) {
		t.Errorf("operand mutated: %v", got)
	}
}

func TestLockStateIgnoresNegativePaths(t *testing.T) {
	l := NewLockState(nil)
	for _, p := range []TreePath{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
		l.Set(p, true)
		if _, ok := l.Get(p); ok {
			t.Errorf("Get(%v): want ok == false", p)
		}
	}
	if got := l.Paths(); len(got) != 0 {
		t.Errorf("Paths() after negative Sets = %v, want none", got)
	}
}
