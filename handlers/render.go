package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/collections"
	"cmbcompanion/services"
)

// renderPayload selects the output folder and the cascade behaviour.
// An empty folder falls back to the outputfolder setting.
type renderPayload struct {
	Folder    string `json:"folder"`
	Recursive bool   `json:"recursive"`
}

// HandleRenderCmb renders the measurement book at {row} to PDF and
// spreadsheet files in the output folder.
func HandleRenderCmb(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return handleRender(app, store, e, func(p *services.Project, folder string, row int, globals map[string]string, recursive bool) services.RenderResult {
			return p.RenderCmb(folder, row, globals, recursive)
		})
	}
}

// HandleRenderBill renders the bill at {row} to PDF and spreadsheet
// files in the output folder.
func HandleRenderBill(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return handleRender(app, store, e, func(p *services.Project, folder string, row int, globals map[string]string, recursive bool) services.RenderResult {
			return p.RenderBill(folder, row, globals, recursive)
		})
	}
}

func handleRender(
	app *pocketbase.PocketBase,
	store *ProjectStore,
	e *core.RequestEvent,
	render func(*services.Project, string, int, map[string]string, bool) services.RenderResult,
) error {
	record, err := findProject(app, e)
	if record == nil {
		return err
	}
	row, err := strconv.Atoi(e.Request.PathValue("row"))
	if err != nil {
		return e.String(http.StatusBadRequest, "Invalid row")
	}

	var payload renderPayload
	if e.Request.Body != nil {
		// The body is optional; decode failures on an empty body are fine.
		_ = json.NewDecoder(e.Request.Body).Decode(&payload)
	}

	globals, err := collections.GlobalValues(app)
	if err != nil {
		log.Printf("render: %v", err)
		return e.String(http.StatusInternalServerError, "Could not load document settings")
	}

	folder := payload.Folder
	if folder == "" {
		folder = globals["outputfolder"]
	}
	if folder == "" {
		return e.String(http.StatusBadRequest, "No output folder configured")
	}

	var result services.RenderResult
	err = store.View(record, func(p *services.Project) error {
		result = render(p, folder, row, globals, payload.Recursive)
		return nil
	})
	if err != nil {
		log.Printf("render: project %s: %v", record.Id, err)
		return e.String(http.StatusInternalServerError, "Could not load project")
	}

	return e.JSON(http.StatusOK, map[string]any{
		"status":  result.Status.String(),
		"message": result.Message,
	})
}
