package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cmbcompanion/testhelpers"
)

func TestHandleBillInsert(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	rec := postNode(t, app, record, HandleBillInsert(app, store), http.MethodPost, billPayload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	p := loadStored(t, app, record.Id)
	if len(p.Bills) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(p.Bills))
	}
	// 150 measured against 100 at rate 100: 130 normal, 20 excess at 80.
	if got := p.Bills[0].TotalAmount; got != 14600 {
		t.Errorf("bill total = %v, want 14600", got)
	}
}

func TestHandleBillInsert_BadData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	body := `{"model":{"type":"BillData","data":{"billType":9}}}`
	rec := postNode(t, app, record, HandleBillInsert(app, store), http.MethodPost, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleBillList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	rec := postNode(t, app, record, HandleBillInsert(app, store), http.MethodPost, billPayload)
	if rec.Code != http.StatusOK {
		t.Fatalf("bill insert: %d: %s", rec.Code, rec.Body.String())
	}

	handler := HandleBillList(app, store)
	req := httptest.NewRequest(http.MethodGet, "/projects/"+record.Id+"/bills", nil)
	req.SetPathValue("id", record.Id)
	resp := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, resp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"First RA Bill", "14600"} {
		if !strings.Contains(body, want) {
			t.Errorf("bill list missing %q: %s", want, body)
		}
	}
}

func TestHandleBillEdit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	rec := postNode(t, app, record, HandleBillInsert(app, store), http.MethodPost, billPayload)
	if rec.Code != http.StatusOK {
		t.Fatalf("bill insert: %d: %s", rec.Code, rec.Body.String())
	}

	edited := strings.Replace(billPayload, "First RA Bill", "First and Final Bill", 1)
	handler := HandleBillEdit(app, store)
	req := httptest.NewRequest(http.MethodPatch, "/projects/"+record.Id+"/bills/0", strings.NewReader(edited))
	req.SetPathValue("id", record.Id)
	req.SetPathValue("row", "0")
	resp := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, resp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	p := loadStored(t, app, record.Id)
	if p.Bills[0].Data.Title != "First and Final Bill" {
		t.Errorf("bill title = %q", p.Bills[0].Data.Title)
	}
}

func TestHandleBillDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	rec := postNode(t, app, record, HandleBillInsert(app, store), http.MethodPost, billPayload)
	if rec.Code != http.StatusOK {
		t.Fatalf("bill insert: %d: %s", rec.Code, rec.Body.String())
	}

	handler := HandleBillDelete(app, store)
	req := httptest.NewRequest(http.MethodDelete, "/projects/"+record.Id+"/bills/0", nil)
	req.SetPathValue("id", record.Id)
	req.SetPathValue("row", "0")
	resp := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, resp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	p := loadStored(t, app, record.Id)
	if len(p.Bills) != 0 {
		t.Errorf("expected no bills, got %d", len(p.Bills))
	}
}

func TestHandleBillDelete_BadRow(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	handler := HandleBillDelete(app, store)
	req := httptest.NewRequest(http.MethodDelete, "/projects/"+record.Id+"/bills/3", nil)
	req.SetPathValue("id", record.Id)
	req.SetPathValue("row", "3")
	resp := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, resp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.Code)
	}
}
