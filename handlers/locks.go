package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// HandleLocks returns the paths of every measurement item held by a
// bill or an abstract, in tree order.
func HandleLocks(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}

		locks := []services.TreePath{}
		err = store.View(record, func(p *services.Project) error {
			locks = append(locks, p.Locks.Paths()...)
			return nil
		})
		if err != nil {
			log.Printf("locks: project %s: %v", record.Id, err)
			return e.String(http.StatusInternalServerError, "Could not load project")
		}
		return e.JSON(http.StatusOK, map[string]any{"locks": locks})
	}
}
