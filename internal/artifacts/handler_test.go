package artifacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/clinic-platform/pkg/logging"
)

func artifactRequest(method, target, prescriptionID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", prescriptionID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlerList(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(context.Background(), []byte("%PDF-1.7 body"), "RX300", ClassPDFs); err != nil {
		t.Fatalf("save: %v", err)
	}

	h := NewHandler(store, logging.Default())
	rec := httptest.NewRecorder()
	h.List(rec, artifactRequest(http.MethodGet, "/prescriptions/RX300/artifacts", "RX300"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var records []*SavedArtifact
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Class != ClassPDFs {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestHandlerList_MissingID(t *testing.T) {
	h := NewHandler(newTestStore(t), logging.Default())
	rec := httptest.NewRecorder()
	h.List(rec, artifactRequest(http.MethodGet, "/prescriptions//artifacts", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerDelete(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(context.Background(), []byte("%PDF-1.7 body"), "RX301", ClassPDFs); err != nil {
		t.Fatalf("save: %v", err)
	}

	h := NewHandler(store, logging.Default())
	rec := httptest.NewRecorder()
	h.Delete(rec, artifactRequest(http.MethodDelete, "/prescriptions/RX301/artifacts", "RX301"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result DeleteResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Deleted != 1 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	remaining, err := store.List(context.Background(), "RX301")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty listing after delete, got %d", len(remaining))
	}
}
