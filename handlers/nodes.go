package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// nodePayload is the request body shared by the tree mutation routes.
// Model carries a tagged node envelope; Row/Path locate it.
type nodePayload struct {
	Row   *int              `json:"row"`
	Path  services.TreePath `json:"path"`
	Model json.RawMessage   `json:"model"`
}

func decodeNodePayload(e *core.RequestEvent) (*nodePayload, error) {
	var payload nodePayload
	if err := json.NewDecoder(e.Request.Body).Decode(&payload); err != nil {
		return nil, e.String(http.StatusBadRequest, "Invalid JSON payload")
	}
	return &payload, nil
}

// documentStatus is the mutation response: where the undo history
// stands after the edit.
func documentStatus(p *services.Project) map[string]any {
	return map[string]any{
		"canUndo":   p.CanUndo(),
		"canRedo":   p.CanRedo(),
		"undoLabel": p.UndoLabel(),
		"redoLabel": p.RedoLabel(),
	}
}

// HandleCmbInsert inserts a measurement book, at the given row or at
// the end.
func HandleCmbInsert(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		cmb, err := services.DecodeCmb(payload.Model)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			row := len(p.Cmbs)
			if payload.Row != nil {
				row = *payload.Row
			}
			if err := p.AddCmb(cmb, row); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("cmb_insert: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleMeasurementInsert inserts a measurement or completion under a
// book. A depth-1 path appends, a depth-2 path inserts at its slot.
func HandleMeasurementInsert(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		entry, err := services.DecodeEntry(payload.Model)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.AddMeasurement(entry, payload.Path); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("measurement_insert: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleItemInsert inserts a measurement item under a measurement. A
// depth-2 path appends, a depth-3 path inserts at its slot.
func HandleItemInsert(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		item, err := services.DecodeItem(payload.Model)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.AddMeasurementItem(item, payload.Path); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("item_insert: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleNodeEdit replaces the content of the node at the payload path:
// book name, measurement or completion date, or a measurement item
// wholesale, depending on the path depth.
func HandleNodeEdit(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		var node any
		switch len(payload.Path) {
		case 1:
			node, err = services.DecodeCmb(payload.Model)
		case 2:
			node, err = services.DecodeEntry(payload.Model)
		case 3:
			node, err = services.DecodeItem(payload.Model)
		default:
			return e.String(http.StatusBadRequest, "Path depth must be 1 to 3")
		}
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.EditNode(payload.Path, node); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("node_edit: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleNodeDelete removes the node at the payload path with its
// subtree. References into the subtree are dropped; undo restores them.
func HandleNodeDelete(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.DeleteNode(payload.Path); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("node_delete: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}
