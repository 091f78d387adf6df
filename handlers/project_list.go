package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProjectList returns all projects as a JSON array.
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_list: could not find projects collection: %v", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		records, err := app.FindAllRecords(projectsCol)
		if err != nil {
			log.Printf("project_list: could not query projects: %v", err)
			return e.String(http.StatusInternalServerError, "Could not list projects")
		}

		projects := []map[string]any{}
		for _, record := range records {
			projects = append(projects, map[string]any{
				"id":      record.Id,
				"name":    record.GetString("name"),
				"created": record.GetString("created"),
				"updated": record.GetString("updated"),
			})
		}
		return e.JSON(http.StatusOK, projects)
	}
}
