package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// HandleBillInsert appends a bill decoded from the payload model.
func HandleBillInsert(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		data, err := services.DecodeBillData(payload.Model)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.AddBill(data); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("bill_insert: project %s: %v", record.Id, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleBillEdit replaces the persisted data of the bill at {row}.
func HandleBillEdit(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		row, err := billRow(e)
		if err != nil {
			return e.String(http.StatusBadRequest, "Invalid bill row")
		}
		payload, err := decodeNodePayload(e)
		if payload == nil {
			return err
		}

		data, err := services.DecodeBillData(payload.Model)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.EditBill(row, data); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("bill_edit: project %s row %d: %v", record.Id, row, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleBillDelete removes the bill at {row}.
func HandleBillDelete(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}
		row, err := billRow(e)
		if err != nil {
			return e.String(http.StatusBadRequest, "Invalid bill row")
		}

		var status map[string]any
		err = store.Mutate(app, record, func(p *services.Project) error {
			if err := p.DeleteBill(row); err != nil {
				return err
			}
			status = documentStatus(p)
			return nil
		})
		if err != nil {
			log.Printf("bill_delete: project %s row %d: %v", record.Id, row, err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		return e.JSON(http.StatusOK, status)
	}
}

// HandleBillList returns the derived figures of every bill, in chain
// order.
func HandleBillList(app *pocketbase.PocketBase, store *ProjectStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findProject(app, e)
		if record == nil {
			return err
		}

		bills := []map[string]any{}
		err = store.View(record, func(p *services.Project) error {
			for _, bill := range p.Bills {
				bills = append(bills, map[string]any{
					"title":           bill.Data.Title,
					"date":            bill.Data.Date,
					"cmbName":         bill.Data.CmbName,
					"billType":        bill.Data.Type,
					"totalAmount":     bill.TotalAmount,
					"sincePrevAmount": bill.SincePrevAmount,
				})
			}
			return nil
		})
		if err != nil {
			log.Printf("bill_list: project %s: %v", record.Id, err)
			return e.String(http.StatusInternalServerError, "Could not load bills")
		}
		return e.JSON(http.StatusOK, bills)
	}
}

func billRow(e *core.RequestEvent) (int, error) {
	return strconv.Atoi(e.Request.PathValue("row"))
}
