package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cmbcompanion/services"
	"cmbcompanion/testhelpers"
)

func TestHandleLocks(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := createFixtureProject(t, app)
	store := NewProjectStore()

	handler := HandleLocks(app, store)
	req := httptest.NewRequest(http.MethodGet, "/projects/"+record.Id+"/locks", nil)
	req.SetPathValue("id", record.Id)
	resp := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, resp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out struct {
		Locks []services.TreePath `json:"locks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Locks) != 0 {
		t.Errorf("expected no locks before billing, got %v", out.Locks)
	}

	rec := postNode(t, app, record, HandleBillInsert(app, store), http.MethodPost, billPayload)
	if rec.Code != http.StatusOK {
		t.Fatalf("bill insert: %d: %s", rec.Code, rec.Body.String())
	}

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/projects/"+record.Id+"/locks", nil)
	req.SetPathValue("id", record.Id)
	if err := handler(newTestRequestEvent(app, req, resp)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Locks) != 1 || !out.Locks[0].Equal(services.TreePath{0, 0, 1}) {
		t.Errorf("locks = %v, want [[0,0,1]]", out.Locks)
	}
}
