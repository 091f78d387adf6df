package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProjectDelete removes a project record and its cached document.
func HandleProjectDelete(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		record, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("project_delete: failed to delete project %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to delete project")
		}
		store.Evict(projectID)

		return e.String(http.StatusOK, "")
	}
}
