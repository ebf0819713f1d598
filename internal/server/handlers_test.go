package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"almanac/internal/config"
	"almanac/internal/core"
	"almanac/internal/pipeline"
)

type stubCurator struct {
	lastDate  string
	lastLimit int
	result    core.CurationResult
}

func (s *stubCurator) Curate(_ context.Context, date string, limit int) core.CurationResult {
	s.lastDate = date
	s.lastLimit = limit
	if date != "" {
		if _, err := pipeline.NormalizeDate(date, limit, 25, 10, 30); err != nil {
			return core.CurationResult{
				Success:   false,
				Error:     err.Error(),
				ErrorCode: core.ErrorCodeInvalidDate,
				Events:    []core.CuratedItem{},
			}
		}
	}
	return s.result
}

func newTestServer(curator Curator) *Server {
	return New(curator, config.Server{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
}

func okResult() core.CurationResult {
	return core.CurationResult{
		Success: true,
		Date:    "2025-08-15",
		RunID:   "run-1",
		Totals:  core.Totals{Returned: 1, RegionallyRelevant: 1},
		Events: []core.CuratedItem{
			{
				Category:             core.CategoryEvent,
				Title:                "Independence of India",
				Year:                 "1947",
				Summary:              "India became independent.",
				DateISO:              "1947-08-15",
				DisplayDate:          "August 15, 1947",
				VerifiedDay:          true,
				IsRegionallyRelevant: true,
				Score:                92,
			},
		},
	}
}

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(&stubCurator{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true || body["service"] != "almanac" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubCurator{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(&stubCurator{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Service != "almanac" || body.Version == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleHistoryPost(t *testing.T) {
	curator := &stubCurator{result: okResult()}
	srv := newTestServer(curator)

	req := httptest.NewRequest(http.MethodPost, "/api/history", strings.NewReader(`{"date":"2025-08-15","limit":12}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if curator.lastDate != "2025-08-15" || curator.lastLimit != 12 {
		t.Errorf("curator called with %q/%d", curator.lastDate, curator.lastLimit)
	}

	var result core.CurationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || len(result.Events) != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Events[0].Title != "Independence of India" {
		t.Errorf("event title = %q", result.Events[0].Title)
	}
}

func TestHandleHistoryGetQueryParams(t *testing.T) {
	curator := &stubCurator{result: okResult()}
	srv := newTestServer(curator)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?date=2025-08-15&limit=15", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if curator.lastDate != "2025-08-15" || curator.lastLimit != 15 {
		t.Errorf("curator called with %q/%d", curator.lastDate, curator.lastLimit)
	}
}

func TestHandleHistoryInvalidDate(t *testing.T) {
	srv := newTestServer(&stubCurator{result: okResult()})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?date=not-a-date", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleHistoryMalformedBody(t *testing.T) {
	srv := newTestServer(&stubCurator{result: okResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/history", strings.NewReader(`{"date": `))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHistoryPipelineFailureStays200(t *testing.T) {
	curator := &stubCurator{result: core.CurationResult{
		Success:   false,
		Error:     "pipeline stage failed",
		ErrorCode: core.ErrorCodePipeline,
		Events:    []core.CuratedItem{},
	}}
	srv := newTestServer(curator)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for recovered pipeline failures", rec.Code)
	}
	var result core.CurationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success || result.ErrorCode != core.ErrorCodePipeline {
		t.Errorf("result = %+v", result)
	}
}
