package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// HandleProjectCreate creates a project record carrying an empty
// document model.
func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON payload")
		}
		if payload.Name == "" {
			return e.String(http.StatusBadRequest, "Missing project name")
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_create: could not find projects collection: %v", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		model, err := services.NewProject().Model()
		if err != nil {
			log.Printf("project_create: could not build empty model: %v", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		record.Set("name", payload.Name)
		record.Set("model", string(model))
		if err := app.Save(record); err != nil {
			log.Printf("project_create: failed to save project: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to create project")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"id":   record.Id,
			"name": record.GetString("name"),
		})
	}
}
