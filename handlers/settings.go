package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/collections"
)

// HandleSettingsGet returns every document global as key/value/caption.
func HandleSettingsGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		settingsCol, err := app.FindCollectionByNameOrId("settings")
		if err != nil {
			log.Printf("settings_get: could not find settings collection: %v", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		records, err := app.FindAllRecords(settingsCol)
		if err != nil {
			log.Printf("settings_get: could not query settings: %v", err)
			return e.String(http.StatusInternalServerError, "Could not load settings")
		}

		settings := []map[string]string{}
		for _, record := range records {
			settings = append(settings, map[string]string{
				"key":     record.GetString("key"),
				"value":   record.GetString("value"),
				"caption": record.GetString("caption"),
			})
		}
		return e.JSON(http.StatusOK, settings)
	}
}

// HandleSettingsSave updates document global values from a key/value
// map. Unknown keys are created so offices can carry extra fields.
func HandleSettingsSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload map[string]string
		if err := json.NewDecoder(e.Request.Body).Decode(&payload); err != nil {
			return e.String(http.StatusBadRequest, "Invalid JSON payload")
		}

		settingsCol, err := app.FindCollectionByNameOrId("settings")
		if err != nil {
			log.Printf("settings_save: could not find settings collection: %v", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		for key, value := range payload {
			records, _ := app.FindRecordsByFilter(
				settingsCol,
				"key = {:key}",
				"", 1, 0,
				map[string]any{"key": key},
			)

			var record *core.Record
			if len(records) > 0 {
				record = records[0]
			} else {
				record = core.NewRecord(settingsCol)
				record.Set("key", key)
			}
			record.Set("value", value)

			if err := app.Save(record); err != nil {
				log.Printf("settings_save: failed to save %q: %v", key, err)
				return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
		}

		values, err := collections.GlobalValues(app)
		if err != nil {
			log.Printf("settings_save: %v", err)
			return e.String(http.StatusInternalServerError, "Could not reload settings")
		}
		return e.JSON(http.StatusOK, values)
	}
}
