package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// HandleModelGet returns the serialized document of a project.
func HandleModelGet(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}

		var model []byte
		err = store.View(record, func(p *services.Project) error {
			model, err = p.Model()
			return err
		})
		if err != nil {
			log.Printf("model_get: %v", err)
			return e.String(http.StatusInternalServerError, "Could not serialize project")
		}
		return e.Blob(http.StatusOK, "application/json", model)
	}
}

// HandleModelPut replaces the document of a project from serialized
// form. A version mismatch or malformed payload leaves the stored
// document untouched.
func HandleModelPut(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}

		body, err := io.ReadAll(e.Request.Body)
		if err != nil {
			return e.String(http.StatusBadRequest, "Could not read request body")
		}

		err = store.Mutate(app, record, func(p *services.Project) error {
			return p.SetModel(body)
		})
		if err != nil {
			log.Printf("model_put: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.String(http.StatusOK, "")
	}
}

// findProject resolves the {id} path value into a project record. On
// failure it answers the request itself and returns a nil record;
// callers check the record and propagate the returned value.
func findProject(app *pocketbase.PocketBase, e *core.RequestEvent) (*core.Record, error) {
	projectID := e.Request.PathValue("id")
	if projectID == "" {
		return nil, e.String(http.StatusBadRequest, "Missing project ID")
	}
	record, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return nil, e.String(http.StatusNotFound, "Project not found")
	}
	return record, nil
}
