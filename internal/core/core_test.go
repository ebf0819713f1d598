package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCuratedItemJSONOmitsAbsentFields(t *testing.T) {
	item := CuratedItem{
		Category: CategoryEvent,
		Title:    "Event: Something",
		Year:     "1947",
		Summary:  "A summary.",
	}

	raw, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if strings.Contains(body, "date_iso") {
		t.Errorf("unverified item should omit date_iso: %s", body)
	}
	if strings.Contains(body, "source_url") {
		t.Errorf("item without a page should omit source_url: %s", body)
	}

	item.DateISO = "1947-08-15"
	item.SourceURL = "https://en.wikipedia.org/wiki/Something"
	raw, err = json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body = string(raw)
	if !strings.Contains(body, `"date_iso":"1947-08-15"`) {
		t.Errorf("verified item should carry date_iso: %s", body)
	}
	if !strings.Contains(body, `"source_url"`) {
		t.Errorf("item with a page should carry source_url: %s", body)
	}
}

func TestCurationResultErrorCode(t *testing.T) {
	ok := CurationResult{Success: true}
	if ok.IsInvalidInput() {
		t.Error("successful result should not read as invalid input")
	}

	bad := CurationResult{Success: false, ErrorCode: ErrorCodeInvalidDate}
	if !bad.IsInvalidInput() {
		t.Error("invalid-date result should read as invalid input")
	}

	internal := CurationResult{Success: false, ErrorCode: ErrorCodePipeline}
	if internal.IsInvalidInput() {
		t.Error("pipeline failure is not the caller's fault")
	}

	raw, err := json.Marshal(ok)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "error_code") {
		t.Errorf("successful result should omit error_code: %s", raw)
	}
}
