package services

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewScheduleItem(t *testing.T) {
	item := NewScheduleItem("1.1", "Earthwork in excavation", "cum", "126.50", "1000", "DSR 2.8", "")
	if item.Rate != 126.50 {
		t.Errorf("Rate = %v, want 126.50", item.Rate)
	}
	if item.Qty != 1000 {
		t.Errorf("Qty = %v, want 1000", item.Qty)
	}
	if item.ExcessRatePercent != 30 {
		t.Errorf("default ExcessRatePercent = %v, want 30", item.ExcessRatePercent)
	}

	item = NewScheduleItem("1.2", "Extra lift", "cum", "bad rate", "10", "", "45")
	if item.Rate != 0 {
		t.Errorf("malformed rate = %v, want 0", item.Rate)
	}
	if item.ExcessRatePercent != 45 {
		t.Errorf("ExcessRatePercent = %v, want 45", item.ExcessRatePercent)
	}
}

func TestScheduleItemNos(t *testing.T) {
	s := &Schedule{}
	s.Append(NewScheduleItem("1", "Heading block", "", "0", "0", "", ""))
	s.Append(NewScheduleItem("1.1", "Priced item", "cum", "100", "50", "", ""))
	s.Append(NewScheduleItem("", "Continuation text", "", "0", "0", "", ""))
	s.Append(NewScheduleItem("2", "Unmeasured item", "nos", "10", "0", "", ""))
	s.Append(NewScheduleItem("3", "Counted item", "nos", "250", "12", "", ""))

	got := s.ItemNos()
	want := []string{"1.1", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ItemNos() = %v, want %v", got, want)
	}
}

func TestScheduleLookup(t *testing.T) {
	s := &Schedule{}
	s.Append(NewScheduleItem("1.1", "First", "cum", "100", "50", "", ""))

	if item := s.Lookup("1.1"); item == nil || item.Description != "First" {
		t.Errorf("Lookup(\"1.1\") = %v, want item First", item)
	}
	if item := s.Lookup("9.9"); item != nil {
		t.Errorf("Lookup(\"9.9\") = %v, want nil", item)
	}
}

func TestScheduleInsertRemove(t *testing.T) {
	s := &Schedule{}
	s.Append(NewScheduleItem("1", "A", "cum", "1", "1", "", ""))
	s.Append(NewScheduleItem("3", "C", "cum", "1", "1", "", ""))
	s.Insert(1, NewScheduleItem("2", "B", "cum", "1", "1", "", ""))

	if got := s.ItemNos(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("after insert, ItemNos() = %v", got)
	}
	s.Remove(0)
	if got := s.ItemNos(); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Fatalf("after remove, ItemNos() = %v", got)
	}
	s.Replace(0, NewScheduleItem("2A", "B revised", "cum", "1", "1", "", ""))
	if got := s.ItemNos(); !reflect.DeepEqual(got, []string{"2A", "3"}) {
		t.Fatalf("after replace, ItemNos() = %v", got)
	}
}

func TestUpdateValuesExtendedDescription(t *testing.T) {
	s := &Schedule{}
	s.Append(NewScheduleItem("2", "Providing and laying cement concrete", "", "0", "0", "", ""))
	s.Append(NewScheduleItem("", "including curing and compaction", "", "0", "0", "", ""))
	s.Append(NewScheduleItem("2.1", "1:2:4 nominal mix", "cum", "4500", "20", "", ""))
	s.Append(NewScheduleItem("5", "Standalone item", "nos", "100", "5", "", ""))
	s.UpdateValues()

	want := "Providing and laying cement concrete\nincluding curing and compaction\n1:2:4 nominal mix"
	if got := s.Items[2].ExtendedDescription; got != want {
		t.Errorf("sub-item ExtendedDescription = %q, want %q", got, want)
	}
	if got := s.Items[3].ExtendedDescription; got != "Standalone item" {
		t.Errorf("standalone ExtendedDescription = %q", got)
	}
}

func TestUpdateValuesLimitedDescription(t *testing.T) {
	s := &Schedule{}
	long := strings.Repeat("x", 3*descriptionMaxLength)
	s.Append(NewScheduleItem("1", long, "cum", "10", "10", "", ""))
	s.UpdateValues()

	limited := s.Items[0].ExtendedDescriptionLimited
	if len(limited) > descriptionMaxLength+10 {
		t.Errorf("limited description length = %d, want at most %d", len(limited), descriptionMaxLength+10)
	}
	if !strings.Contains(limited, " ... ") {
		t.Errorf("limited description misses elision marker: %q", limited[:20])
	}
}
