package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// SettingDef is one document global substituted into rendered documents.
type SettingDef struct {
	Key     string
	Caption string
}

// DefaultSettings lists the document globals every installation carries.
// Values start empty and are filled in per office.
var DefaultSettings = []SettingDef{
	{"nameofwork", "Name of Work"},
	{"agency", "Agency"},
	{"agmntno", "Agreement Number"},
	{"situation", "Situation"},
	{"dateofstart", "Date of Start"},
	{"dateofstartasperagmnt", "Date of start as per Agmnt."},
	{"issuedto", "CMB Issued to"},
	{"verifyingauthority", "Verifying Authority"},
	{"verifyingauthorityoffice", "Verifying Authority Office"},
	{"issuingauthority", "Issuing Authority"},
	{"issuingauthorityoffice", "Issuing Authority Office"},
	{"outputfolder", "Output Folder"},
}

// Seed creates any missing settings records. Safe to call on every startup.
func Seed(app *pocketbase.PocketBase) error {
	settingsCol, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return fmt.Errorf("seed: could not find settings collection: %w", err)
	}

	for _, def := range DefaultSettings {
		existing, _ := app.FindRecordsByFilter(
			settingsCol,
			"key = {:key}",
			"", 1, 0,
			map[string]any{"key": def.Key},
		)
		if len(existing) > 0 {
			continue
		}

		record := core.NewRecord(settingsCol)
		record.Set("key", def.Key)
		record.Set("caption", def.Caption)
		record.Set("value", "")
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: failed to create setting %q: %w", def.Key, err)
		}
	}
	return nil
}

// GlobalValues loads the settings collection into the key/value map the
// document renderers substitute from.
func GlobalValues(app *pocketbase.PocketBase) (map[string]string, error) {
	settingsCol, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return nil, fmt.Errorf("settings: could not find settings collection: %w", err)
	}
	records, err := app.FindAllRecords(settingsCol)
	if err != nil {
		return nil, fmt.Errorf("settings: could not query settings: %w", err)
	}

	values := map[string]string{}
	for _, record := range records {
		values[record.GetString("key")] = record.GetString("value")
	}
	return values, nil
}
