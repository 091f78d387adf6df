package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
	"cmbcompanion/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// fixtureDocument builds a small document: two schedule items and one
// measurement book with a heading and a measured item carrying 150
// against a contracted 100.
func fixtureDocument(t *testing.T) *services.Project {
	t.Helper()

	typ, err := services.LookupItemType("nnnnnT")
	if err != nil {
		t.Fatalf("lookup item type: %v", err)
	}

	p := services.NewProject()
	p.Schedule.Append(services.NewScheduleItem("1", "Earthwork in excavation", "cum", "100", "100", "", "30"))
	p.Schedule.Append(services.NewScheduleItem("2", "Supply of fittings", "nos", "50", "10", "", "30"))

	item := services.NewCustomItem(typ)
	item.ItemNos[0] = "1"
	item.AppendRecord(services.NewRecord([]string{"Trench A", "80", "", "", "", ""}, typ))
	item.AppendRecord(services.NewRecord([]string{"Trench B", "70", "", "", "", ""}, typ))

	meas := &services.Measurement{
		Date: "01-04-2025",
		Items: []services.MeasurementItem{
			&services.HeadingItem{Remark: "Foundation work"},
			item,
		},
	}
	p.Cmbs = append(p.Cmbs, &services.Cmb{
		Name:    "1/2025",
		Entries: []services.CmbEntry{meas, &services.Completion{Date: "30-04-2025"}},
	})
	p.Update()
	return p
}

// createFixtureProject stores the fixture document in a fresh project
// record and returns the record.
func createFixtureProject(t *testing.T, app *pocketbase.PocketBase) *core.Record {
	t.Helper()

	record := testhelpers.CreateTestProject(t, app, "Test Work")
	model, err := fixtureDocument(t).Model()
	if err != nil {
		t.Fatalf("serialize fixture document: %v", err)
	}
	record.Set("model", string(model))
	if err := app.Save(record); err != nil {
		t.Fatalf("save fixture model: %v", err)
	}
	return record
}

// billPayload is a tagged bill envelope over the fixture's measured
// item, wrapped the way the bill routes expect it.
const billPayload = `{"model":{"type":"BillData","data":{
	"prevBill":-1,"cmbName":"1/2025","title":"First RA Bill","date":"30-04-2025",
	"startingPage":1,"mItems":[[0,0,1]],
	"partPercentage":{"1":100},"excessPartPercentage":{"1":100},"excessRates":{"1":80},
	"qty":{},"normalAmount":{},"excessAmount":{},"billType":1}}}`
