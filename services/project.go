package services

import (
	"fmt"
	"log"
)

// Project is the root document: the schedule of agreement items, the
// measurement book forest and the bill chain, plus the derived structures
// recomputed by Update. Projects are not safe for concurrent use; callers
// serialize access.
type Project struct {
	Schedule *Schedule
	Cmbs     []*Cmb
	Bills    []*Bill

	// Derived by Update.
	Locks   *LockState
	CmbRefs []map[int]bool // per cmb, the other cmbs its abstracts pull from

	stack UndoStack
}

func NewProject() *Project {
	return &Project{
		Schedule: &Schedule{},
		Locks:    NewLockState(nil),
	}
}

// Update recomputes every derived structure: extended descriptions,
// abstract syntheses and the cmb dependency sets, bill figures, and the
// lock state of billed and abstracted measurement items. Abstracts
// resolve before bills so billed abstract items carry fresh totals.
func (p *Project) Update() {
	p.Schedule.UpdateValues()

	p.CmbRefs = make([]map[int]bool, len(p.Cmbs))
	for cmbNo := range p.Cmbs {
		refs := map[int]bool{}
		forEachAbstractIn(p.Cmbs, cmbNo, func(item *AbstractItem) {
			item.update(p.Cmbs)
			for _, ref := range item.Refs {
				if ref[0] != cmbNo {
					refs[ref[0]] = true
				}
			}
		})
		p.CmbRefs[cmbNo] = refs
	}

	for _, bill := range p.Bills {
		bill.Update(p.Schedule, p.Cmbs, p.Bills)
	}

	p.Locks = NewLockState(nil)
	for _, bill := range p.Bills {
		p.Locks = p.Locks.Union(NewLockState(liveRefs(p.Cmbs, bill.Data.MItems)))
	}
	forEachAbstract(p.Cmbs, func(_ TreePath, item *AbstractItem) {
		p.Locks = p.Locks.Union(NewLockState(liveRefs(p.Cmbs, item.Refs)))
	})
}

// liveRefs filters refs down to those still addressing a tree item. Stale
// refs stay on their holder but must not leak into the lock array, whose
// storage tracks the tree dimensions.
func liveRefs(cmbs []*Cmb, refs []TreePath) []TreePath {
	var out []TreePath
	for _, ref := range refs {
		if _, err := nodeAt(cmbs, ref); err == nil {
			out = append(out, ref)
		}
	}
	return out
}

func forEachAbstractIn(cmbs []*Cmb, cmbNo int, fn func(*AbstractItem)) {
	for _, entry := range cmbs[cmbNo].Entries {
		meas, ok := entry.(*Measurement)
		if !ok {
			continue
		}
		for _, mi := range meas.Items {
			if abs, ok := mi.(*AbstractItem); ok {
				fn(abs)
			}
		}
	}
}

// Do applies a command, refreshes derived data and then records the
// inverse. A failed command leaves both project and history untouched.
func (p *Project) Do(cmd Command) error {
	inverse, err := cmd.apply(p)
	if err != nil {
		return err
	}
	log.Printf("project: %s", cmd.Label())
	p.Update()
	p.stack.push(inverse)
	return nil
}

// Undo reverses the most recent command. Reversal of a successfully
// applied command cannot fail; a failure here means the histories are out
// of step with the document and both are dropped.
func (p *Project) Undo() error {
	if !p.stack.CanUndo() {
		return fmt.Errorf("undo: nothing to undo")
	}
	cmd := p.stack.undo[len(p.stack.undo)-1]
	inverse, err := cmd.apply(p)
	if err != nil {
		p.stack.clear()
		return fmt.Errorf("undo: %w", err)
	}
	log.Printf("project: undo %s", cmd.Label())
	p.Update()
	p.stack.undo = p.stack.undo[:len(p.stack.undo)-1]
	p.stack.redo = append(p.stack.redo, inverse)
	return nil
}

// Redo reapplies the most recently undone command.
func (p *Project) Redo() error {
	if !p.stack.CanRedo() {
		return fmt.Errorf("redo: nothing to redo")
	}
	cmd := p.stack.redo[len(p.stack.redo)-1]
	inverse, err := cmd.apply(p)
	if err != nil {
		p.stack.clear()
		return fmt.Errorf("redo: %w", err)
	}
	log.Printf("project: redo %s", cmd.Label())
	p.Update()
	p.stack.redo = p.stack.redo[:len(p.stack.redo)-1]
	p.stack.undo = append(p.stack.undo, inverse)
	return nil
}

func (p *Project) CanUndo() bool     { return p.stack.CanUndo() }
func (p *Project) CanRedo() bool     { return p.stack.CanRedo() }
func (p *Project) UndoLabel() string { return p.stack.UndoLabel() }
func (p *Project) RedoLabel() string { return p.stack.RedoLabel() }
func (p *Project) ClearHistory()     { p.stack.clear() }

// Mutation entry points. Each validates, builds a command and runs it
// through Do so the edit lands on the undo history.

// AddCmb inserts a measurement book at row; row == len(Cmbs) appends.
func (p *Project) AddCmb(cmb *Cmb, row int) error {
	return p.Do(&insertNodeCmd{path: TreePath{row}, node: cmb})
}

// AddMeasurement inserts a measurement or completion under the book
// path[0]; a depth-1 path appends, a depth-2 path inserts at path[1].
func (p *Project) AddMeasurement(entry CmbEntry, path TreePath) error {
	if len(path) == 1 {
		if path[0] < 0 || path[0] >= len(p.Cmbs) {
			return fmt.Errorf("path %v: no such measurement book", path)
		}
		path = TreePath{path[0], len(p.Cmbs[path[0]].Entries)}
	}
	return p.Do(&insertNodeCmd{path: path, node: entry})
}

// AddMeasurementItem inserts an item under the measurement path[0:2]; a
// depth-2 path appends, a depth-3 path inserts at path[2].
func (p *Project) AddMeasurementItem(item MeasurementItem, path TreePath) error {
	if len(path) == 2 {
		meas, err := measurementAt(p.Cmbs, TreePath{path[0], path[1], 0})
		if err != nil {
			return err
		}
		path = TreePath{path[0], path[1], len(meas.Items)}
	}
	return p.Do(&insertNodeCmd{path: path, node: item})
}

// DeleteNode removes the node at path with its subtree. References into
// the subtree are dropped; references past it shift back. Undo restores
// both the subtree and the dropped references.
func (p *Project) DeleteNode(path TreePath) error {
	return p.Do(&deleteNodeCmd{path: path.Clone()})
}

// EditNode replaces the content of the node at path: the name of a book,
// the date of a measurement or completion, or a measurement item
// wholesale. The replacement must be the same kind of node.
func (p *Project) EditNode(path TreePath, node any) error {
	return p.Do(&editNodeCmd{path: path.Clone(), node: node})
}

// AddBill appends a bill.
func (p *Project) AddBill(data *BillData) error {
	return p.Do(&insertBillCmd{data: data, row: len(p.Bills)})
}

// EditBill replaces the persisted data of the bill at row.
func (p *Project) EditBill(row int, data *BillData) error {
	return p.Do(&editBillCmd{row: row, data: data})
}

// DeleteBill removes the bill at row. Later bills referring to it by
// index are left as they are and resolve leniently on the next Update.
func (p *Project) DeleteBill(row int) error {
	return p.Do(&deleteBillCmd{row: row})
}

// insertNodeCmd inserts a node; the path names the slot the node will
// occupy, so held references at or past it are shifted up first.
type insertNodeCmd struct {
	path TreePath
	node any
}

func (c *insertNodeCmd) Label() string {
	return fmt.Sprintf("insert node at %v", c.path)
}

func (c *insertNodeCmd) apply(p *Project) (Command, error) {
	if err := p.insertNode(c.path, c.node, true); err != nil {
		return nil, err
	}
	return &deleteNodeCmd{path: c.path.Clone()}, nil
}

func (p *Project) insertNode(path TreePath, node any, repair bool) error {
	switch len(path) {
	case 1:
		cmb, ok := node.(*Cmb)
		if !ok {
			return fmt.Errorf("path %v: expected a measurement book, got %T", path, node)
		}
		if path[0] < 0 || path[0] > len(p.Cmbs) {
			return fmt.Errorf("path %v: row out of range", path)
		}
		if repair {
			repairHeldPaths(p.Bills, p.Cmbs, path, true)
		}
		p.Cmbs = append(p.Cmbs, nil)
		copy(p.Cmbs[path[0]+1:], p.Cmbs[path[0]:])
		p.Cmbs[path[0]] = cmb
		return nil
	case 2:
		entry, ok := node.(CmbEntry)
		if !ok {
			return fmt.Errorf("path %v: expected a measurement or completion, got %T", path, node)
		}
		if path[0] < 0 || path[0] >= len(p.Cmbs) {
			return fmt.Errorf("path %v: no such measurement book", path)
		}
		if path[1] < 0 || path[1] > len(p.Cmbs[path[0]].Entries) {
			return fmt.Errorf("path %v: row out of range", path)
		}
		if repair {
			repairHeldPaths(p.Bills, p.Cmbs, path, true)
		}
		p.Cmbs[path[0]].InsertEntry(path[1], entry)
		return nil
	case 3:
		item, ok := node.(MeasurementItem)
		if !ok {
			return fmt.Errorf("path %v: expected a measurement item, got %T", path, node)
		}
		meas, err := measurementAt(p.Cmbs, path)
		if err != nil {
			return err
		}
		if path[2] < 0 || path[2] > len(meas.Items) {
			return fmt.Errorf("path %v: row out of range", path)
		}
		if repair {
			repairHeldPaths(p.Bills, p.Cmbs, path, true)
		}
		meas.InsertItem(path[2], item)
		return nil
	}
	return fmt.Errorf("path %v: depth must be 1 to 3", path)
}

// deleteNodeCmd removes a node and its subtree after repairing held
// references against the removal.
type deleteNodeCmd struct {
	path TreePath
}

func (c *deleteNodeCmd) Label() string {
	return fmt.Sprintf("delete node at %v", c.path)
}

func (c *deleteNodeCmd) apply(p *Project) (Command, error) {
	node, err := nodeAt(p.Cmbs, c.path)
	if err != nil {
		return nil, err
	}
	snap := repairHeldPaths(p.Bills, p.Cmbs, c.path, false)
	switch len(c.path) {
	case 1:
		p.Cmbs = append(p.Cmbs[:c.path[0]], p.Cmbs[c.path[0]+1:]...)
	case 2:
		p.Cmbs[c.path[0]].RemoveEntry(c.path[1])
	case 3:
		meas, err := measurementAt(p.Cmbs, c.path)
		if err != nil {
			restoreHeldPaths(p.Bills, p.Cmbs, snap)
			return nil, err
		}
		meas.RemoveItem(c.path[2])
	}
	return &restoreNodeCmd{path: c.path.Clone(), node: node, snap: snap}, nil
}

// restoreNodeCmd puts back a deleted subtree and the exact references
// the deletion rewrote or dropped. It skips the insertion-side repair:
// the snapshot already holds the pre-deletion reference lists wholesale.
type restoreNodeCmd struct {
	path TreePath
	node any
	snap *refSnapshot
}

func (c *restoreNodeCmd) Label() string {
	return fmt.Sprintf("restore node at %v", c.path)
}

func (c *restoreNodeCmd) apply(p *Project) (Command, error) {
	if err := p.insertNode(c.path, c.node, false); err != nil {
		return nil, err
	}
	restoreHeldPaths(p.Bills, p.Cmbs, c.snap)
	return &deleteNodeCmd{path: c.path.Clone()}, nil
}

type editNodeCmd struct {
	path TreePath
	node any
}

func (c *editNodeCmd) Label() string {
	return fmt.Sprintf("edit node at %v", c.path)
}

func (c *editNodeCmd) apply(p *Project) (Command, error) {
	old, err := nodeAt(p.Cmbs, c.path)
	if err != nil {
		return nil, err
	}
	switch len(c.path) {
	case 1:
		cmb, ok := c.node.(*Cmb)
		if !ok {
			return nil, fmt.Errorf("path %v: expected a measurement book, got %T", c.path, c.node)
		}
		prev := &Cmb{Name: p.Cmbs[c.path[0]].Name, Entries: p.Cmbs[c.path[0]].Entries}
		p.Cmbs[c.path[0]].Name = cmb.Name
		return &editNodeCmd{path: c.path, node: prev}, nil
	case 2:
		entry, ok := c.node.(CmbEntry)
		if !ok {
			return nil, fmt.Errorf("path %v: expected a measurement or completion, got %T", c.path, c.node)
		}
		switch cur := old.(type) {
		case *Measurement:
			next, ok := entry.(*Measurement)
			if !ok {
				return nil, fmt.Errorf("path %v: expected a measurement, got %T", c.path, entry)
			}
			prev := &Measurement{Date: cur.Date, Items: cur.Items}
			cur.Date = next.Date
			return &editNodeCmd{path: c.path, node: prev}, nil
		case *Completion:
			next, ok := entry.(*Completion)
			if !ok {
				return nil, fmt.Errorf("path %v: expected a completion, got %T", c.path, entry)
			}
			prev := &Completion{Date: cur.Date}
			cur.Date = next.Date
			return &editNodeCmd{path: c.path, node: prev}, nil
		}
	case 3:
		item, ok := c.node.(MeasurementItem)
		if !ok {
			return nil, fmt.Errorf("path %v: expected a measurement item, got %T", c.path, c.node)
		}
		meas, err := measurementAt(p.Cmbs, c.path)
		if err != nil {
			return nil, err
		}
		prev := meas.Items[c.path[2]]
		meas.Items[c.path[2]] = item
		return &editNodeCmd{path: c.path, node: prev}, nil
	}
	return nil, fmt.Errorf("path %v: depth must be 1 to 3", c.path)
}

type insertBillCmd struct {
	data *BillData
	row  int
}

func (c *insertBillCmd) Label() string {
	return fmt.Sprintf("insert bill at row %d", c.row)
}

func (c *insertBillCmd) apply(p *Project) (Command, error) {
	if c.row < 0 || c.row > len(p.Bills) {
		return nil, fmt.Errorf("bill row %d out of range", c.row)
	}
	p.Bills = append(p.Bills, nil)
	copy(p.Bills[c.row+1:], p.Bills[c.row:])
	p.Bills[c.row] = NewBill(c.data)
	return &deleteBillCmd{row: c.row}, nil
}

type editBillCmd struct {
	row  int
	data *BillData
}

func (c *editBillCmd) Label() string {
	return fmt.Sprintf("edit bill at row %d", c.row)
}

func (c *editBillCmd) apply(p *Project) (Command, error) {
	if c.row < 0 || c.row >= len(p.Bills) {
		return nil, fmt.Errorf("bill row %d out of range", c.row)
	}
	old := p.Bills[c.row].Data
	p.Bills[c.row].Data = c.data
	return &editBillCmd{row: c.row, data: old}, nil
}

type deleteBillCmd struct {
	row int
}

func (c *deleteBillCmd) Label() string {
	return fmt.Sprintf("delete bill at row %d", c.row)
}

func (c *deleteBillCmd) apply(p *Project) (Command, error) {
	if c.row < 0 || c.row >= len(p.Bills) {
		return nil, fmt.Errorf("bill row %d out of range", c.row)
	}
	data := p.Bills[c.row].Data
	p.Bills = append(p.Bills[:c.row], p.Bills[c.row+1:]...)
	return &insertBillCmd{data: data, row: c.row}, nil
}
