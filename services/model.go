package services

import (
	"encoding/json"
	"fmt"
)

// ProjectFileVersion gates model loads. A file carrying any other version
// fails the whole load and leaves the current project untouched.
const ProjectFileVersion = "CMBCOMPANION_FILE_VER_1"

// Persisted variant tags. These appear only at the serialization
// boundary; in-memory code dispatches on the node types themselves.
const (
	tagCmb          = "CMB"
	tagMeasurement  = "Measurement"
	tagCompletion   = "Completion"
	tagHeadingItem  = "MeasurementItemHeading"
	tagCustomItem   = "MeasurementItemCustom"
	tagAbstractItem = "MeasurementItemAbstract"
	tagBillData     = "BillData"
	tagDataModel    = "DataModel"
)

// envelope wraps every persisted node with its variant tag.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type fileModel struct {
	Version string   `json:"version"`
	Model   envelope `json:"model"`
}

type dataModel struct {
	Schedule []*ScheduleItem `json:"schedule"`
	Cmbs     []envelope      `json:"cmbs"`
	Bills    []envelope      `json:"bills"`
}

type cmbModel struct {
	Name    string     `json:"name"`
	Entries []envelope `json:"entries"`
}

type measurementModel struct {
	Date  string     `json:"date"`
	Items []envelope `json:"items"`
}

type completionModel struct {
	Date string `json:"date"`
}

type headingModel struct {
	Remark string `json:"remark"`
}

type customModel struct {
	ItemType    string     `json:"itemType"`
	ItemNos     []string   `json:"itemNos"`
	Records     [][]string `json:"records"`
	Remark      string     `json:"remark"`
	ItemRemarks []string   `json:"itemRemarks"`
	UserData    []string   `json:"userData"`
}

type abstractModel struct {
	Refs   []TreePath `json:"refs"`
	Remark string     `json:"remark"`
}

type billModel struct {
	PrevBill             int                `json:"prevBill"`
	CmbName              string             `json:"cmbName"`
	Title                string             `json:"title"`
	Date                 string             `json:"date"`
	StartingPage         int                `json:"startingPage"`
	MItems               []TreePath         `json:"mItems"`
	PartPercentage       map[string]float64 `json:"partPercentage"`
	ExcessPartPercentage map[string]float64 `json:"excessPartPercentage"`
	ExcessRates          map[string]float64 `json:"excessRates"`
	Qty                  map[string]float64 `json:"qty"`
	NormalAmount         map[string]float64 `json:"normalAmount"`
	ExcessAmount         map[string]float64 `json:"excessAmount"`
	Type                 BillType           `json:"billType"`
}

func wrap(tag string, data any) (envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return envelope{}, fmt.Errorf("model: encode %s: %w", tag, err)
	}
	return envelope{Type: tag, Data: raw}, nil
}

func unwrap(env envelope, tag string, out any) error {
	if env.Type != tag {
		return fmt.Errorf("model: expected tag %q, got %q", tag, env.Type)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("model: decode %s: %w", tag, err)
	}
	return nil
}

// Model serializes the complete document: schedule, measurement books and
// bill data, each node behind its variant tag, the whole behind the file
// version.
func (p *Project) Model() ([]byte, error) {
	dm := dataModel{Schedule: p.Schedule.Items}
	for _, cmb := range p.Cmbs {
		env, err := encodeCmb(cmb)
		if err != nil {
			return nil, err
		}
		dm.Cmbs = append(dm.Cmbs, env)
	}
	for _, bill := range p.Bills {
		env, err := encodeBillData(bill.Data)
		if err != nil {
			return nil, err
		}
		dm.Bills = append(dm.Bills, env)
	}
	model, err := wrap(tagDataModel, dm)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(fileModel{Version: ProjectFileVersion, Model: model}, "", " ")
}

// SetModel replaces the document from serialized form. The data decodes
// fully into a fresh document first; any failure leaves the receiver
// untouched. A successful load drops the undo history.
func (p *Project) SetModel(data []byte) error {
	next, err := LoadProject(data)
	if err != nil {
		return err
	}
	p.Schedule = next.Schedule
	p.Cmbs = next.Cmbs
	p.Bills = next.Bills
	p.stack.clear()
	p.Update()
	return nil
}

// LoadProject decodes a serialized document into a fresh, updated
// project.
func LoadProject(data []byte) (*Project, error) {
	var file fileModel
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("model: decode file: %w", err)
	}
	if file.Version != ProjectFileVersion {
		return nil, fmt.Errorf("model: unsupported file version %q", file.Version)
	}
	var dm dataModel
	if err := unwrap(file.Model, tagDataModel, &dm); err != nil {
		return nil, err
	}

	p := NewProject()
	p.Schedule = &Schedule{Items: dm.Schedule}
	for _, item := range p.Schedule.Items {
		if item == nil {
			return nil, fmt.Errorf("model: null schedule row")
		}
	}
	for _, env := range dm.Cmbs {
		cmb, err := decodeCmb(env)
		if err != nil {
			return nil, err
		}
		p.Cmbs = append(p.Cmbs, cmb)
	}
	for _, env := range dm.Bills {
		data, err := decodeBillData(env)
		if err != nil {
			return nil, err
		}
		p.Bills = append(p.Bills, NewBill(data))
	}
	p.Update()
	return p, nil
}

// DecodeCmb decodes a single tagged measurement book node.
func DecodeCmb(data []byte) (*Cmb, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("model: decode node: %w", err)
	}
	return decodeCmb(env)
}

// DecodeEntry decodes a single tagged Measurement or Completion node.
func DecodeEntry(data []byte) (CmbEntry, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("model: decode node: %w", err)
	}
	return decodeEntry(env)
}

// DecodeItem decodes a single tagged measurement item node.
func DecodeItem(data []byte) (MeasurementItem, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("model: decode node: %w", err)
	}
	return decodeItem(env)
}

// DecodeBillData decodes a single tagged bill record.
func DecodeBillData(data []byte) (*BillData, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("model: decode node: %w", err)
	}
	return decodeBillData(env)
}

func encodeCmb(cmb *Cmb) (envelope, error) {
	m := cmbModel{Name: cmb.Name}
	for _, entry := range cmb.Entries {
		env, err := encodeEntry(entry)
		if err != nil {
			return envelope{}, err
		}
		m.Entries = append(m.Entries, env)
	}
	return wrap(tagCmb, m)
}

func decodeCmb(env envelope) (*Cmb, error) {
	var m cmbModel
	if err := unwrap(env, tagCmb, &m); err != nil {
		return nil, err
	}
	cmb := &Cmb{Name: m.Name}
	for _, entryEnv := range m.Entries {
		entry, err := decodeEntry(entryEnv)
		if err != nil {
			return nil, err
		}
		cmb.Entries = append(cmb.Entries, entry)
	}
	return cmb, nil
}

func encodeEntry(entry CmbEntry) (envelope, error) {
	switch e := entry.(type) {
	case *Measurement:
		m := measurementModel{Date: e.Date}
		for _, item := range e.Items {
			env, err := encodeItem(item)
			if err != nil {
				return envelope{}, err
			}
			m.Items = append(m.Items, env)
		}
		return wrap(tagMeasurement, m)
	case *Completion:
		return wrap(tagCompletion, completionModel{Date: e.Date})
	}
	return envelope{}, fmt.Errorf("model: unknown entry type %T", entry)
}

func decodeEntry(env envelope) (CmbEntry, error) {
	switch env.Type {
	case tagMeasurement:
		var m measurementModel
		if err := unwrap(env, tagMeasurement, &m); err != nil {
			return nil, err
		}
		meas := &Measurement{Date: m.Date}
		for _, itemEnv := range m.Items {
			item, err := decodeItem(itemEnv)
			if err != nil {
				return nil, err
			}
			meas.Items = append(meas.Items, item)
		}
		return meas, nil
	case tagCompletion:
		var m completionModel
		if err := unwrap(env, tagCompletion, &m); err != nil {
			return nil, err
		}
		return &Completion{Date: m.Date}, nil
	}
	return nil, fmt.Errorf("model: unknown entry tag %q", env.Type)
}

func encodeItem(item MeasurementItem) (envelope, error) {
	switch it := item.(type) {
	case *HeadingItem:
		return wrap(tagHeadingItem, headingModel{Remark: it.Remark})
	case *CustomItem:
		m := customModel{
			ItemType:    it.Type.Name,
			ItemNos:     it.ItemNos,
			Remark:      it.Remark,
			ItemRemarks: it.ItemRemarks,
			UserData:    it.UserData,
		}
		for _, rec := range it.Records {
			m.Records = append(m.Records, rec.Fields)
		}
		return wrap(tagCustomItem, m)
	case *AbstractItem:
		return wrap(tagAbstractItem, abstractModel{Refs: it.Refs, Remark: it.Remark})
	}
	return envelope{}, fmt.Errorf("model: unknown item type %T", item)
}

// checkRef rejects item references that can never address a tree node.
// References to since-deleted items are legal and resolve lazily, but the
// shape itself must be sound.
func checkRef(kind string, ref TreePath) error {
	if len(ref) != 3 {
		return fmt.Errorf("model: %s reference %v: depth must be 3", kind, ref)
	}
	for _, c := range ref {
		if c < 0 {
			return fmt.Errorf("model: %s reference %v: negative index", kind, ref)
		}
	}
	return nil
}

func decodeItem(env envelope) (MeasurementItem, error) {
	switch env.Type {
	case tagHeadingItem:
		var m headingModel
		if err := unwrap(env, tagHeadingItem, &m); err != nil {
			return nil, err
		}
		return &HeadingItem{Remark: m.Remark}, nil
	case tagCustomItem:
		var m customModel
		if err := unwrap(env, tagCustomItem, &m); err != nil {
			return nil, err
		}
		typ, err := LookupItemType(m.ItemType)
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		item := NewCustomItem(typ)
		copy(item.ItemNos, m.ItemNos)
		copy(item.ItemRemarks, m.ItemRemarks)
		item.Remark = m.Remark
		if len(m.UserData) > 0 {
			item.UserData = m.UserData
		}
		for _, fields := range m.Records {
			item.AppendRecord(NewRecord(fields, typ))
		}
		return item, nil
	case tagAbstractItem:
		var m abstractModel
		if err := unwrap(env, tagAbstractItem, &m); err != nil {
			return nil, err
		}
		for _, ref := range m.Refs {
			if err := checkRef("abstract", ref); err != nil {
				return nil, err
			}
		}
		return &AbstractItem{Refs: m.Refs, Remark: m.Remark}, nil
	}
	return nil, fmt.Errorf("model: unknown item tag %q", env.Type)
}

func encodeBillData(data *BillData) (envelope, error) {
	return wrap(tagBillData, billModel{
		PrevBill:             data.PrevBill,
		CmbName:              data.CmbName,
		Title:                data.Title,
		Date:                 data.Date,
		StartingPage:         data.StartingPage,
		MItems:               data.MItems,
		PartPercentage:       data.PartPercentage,
		ExcessPartPercentage: data.ExcessPartPercentage,
		ExcessRates:          data.ExcessRates,
		Qty:                  data.Qty,
		NormalAmount:         data.NormalAmount,
		ExcessAmount:         data.ExcessAmount,
		Type:                 data.Type,
	})
}

func decodeBillData(env envelope) (*BillData, error) {
	m := billModel{PrevBill: -1}
	if err := unwrap(env, tagBillData, &m); err != nil {
		return nil, err
	}
	if m.Type != BillNormal && m.Type != BillCustom {
		return nil, fmt.Errorf("model: unknown bill type %d", m.Type)
	}
	for _, ref := range m.MItems {
		if err := checkRef("bill", ref); err != nil {
			return nil, err
		}
	}
	data := NewBillData(m.Type)
	data.PrevBill = m.PrevBill
	data.CmbName = m.CmbName
	data.Title = m.Title
	data.Date = m.Date
	data.StartingPage = m.StartingPage
	data.MItems = m.MItems
	for k, v := range m.PartPercentage {
		data.PartPercentage[k] = v
	}
	for k, v := range m.ExcessPartPercentage {
		data.ExcessPartPercentage[k] = v
	}
	for k, v := range m.ExcessRates {
		data.ExcessRates[k] = v
	}
	for k, v := range m.Qty {
		data.Qty[k] = v
	}
	for k, v := range m.NormalAmount {
		data.NormalAmount[k] = v
	}
	for k, v := range m.ExcessAmount {
		data.ExcessAmount[k] = v
	}
	return data, nil
}
