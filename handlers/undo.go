package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// HandleUndo reverses the project's most recent edit.
func HandleUndo(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.Undo(); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("undo: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleRedo reapplies the project's most recently undone edit.
func HandleRedo(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.Redo(); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("redo: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}
