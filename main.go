package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/collections"
	"cmbcompanion/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed the document globals on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: settings seed failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		store := handlers.NewProjectStore()

		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.POST("/projects", handlers.HandleProjectCreate(app))
		se.Router.DELETE("/projects/{id}", handlers.HandleProjectDelete(app, store))

		// ── Document model ───────────────────────────────────────
		se.Router.GET("/projects/{id}/model", handlers.HandleModelGet(app, store))
		se.Router.PUT("/projects/{id}/model", handlers.HandleModelPut(app, store))

		// ── Measurement book tree ────────────────────────────────
		se.Router.POST("/projects/{id}/cmbs", handlers.HandleCmbInsert(app, store))
		se.Router.POST("/projects/{id}/measurements", handlers.HandleMeasurementInsert(app, store))
		se.Router.POST("/projects/{id}/items", handlers.HandleItemInsert(app, store))
		se.Router.PATCH("/projects/{id}/nodes", handlers.HandleNodeEdit(app, store))
		se.Router.DELETE("/projects/{id}/nodes", handlers.HandleNodeDelete(app, store))

		// ── Bills ────────────────────────────────────────────────
		se.Router.GET("/projects/{id}/bills", handlers.HandleBillList(app, store))
		se.Router.POST("/projects/{id}/bills", handlers.HandleBillInsert(app, store))
		se.Router.PATCH("/projects/{id}/bills/{row}", handlers.HandleBillEdit(app, store))
		se.Router.DELETE("/projects/{id}/bills/{row}", handlers.HandleBillDelete(app, store))

		// ── History ──────────────────────────────────────────────
		se.Router.POST("/projects/{id}/undo", handlers.HandleUndo(app, store))
		se.Router.POST("/projects/{id}/redo", handlers.HandleRedo(app, store))

		// ── Document rendering ───────────────────────────────────
		se.Router.POST("/projects/{id}/render/cmb/{row}", handlers.HandleRenderCmb(app, store))
		se.Router.POST("/projects/{id}/render/bill/{row}", handlers.HandleRenderBill(app, store))

		// ── Lock state ───────────────────────────────────────────
		se.Router.GET("/projects/{id}/locks", handlers.HandleLocks(app, store))

		// ── Document globals ─────────────────────────────────────
		se.Router.GET("/settings", handlers.HandleSettingsGet(app))
		se.Router.PUT("/settings", handlers.HandleSettingsSave(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
