package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/handlers"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/testutil"
)

// viewRouter mounts the saved-view handler under its real routes so URL
// parameters resolve through chi, matching production routing.
func viewRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := handlers.NewSavedViewHandler(testutil.NewTestSavedViewService(t, db))

	r := chi.NewRouter()
	r.Get("/views", handler.Views)
	r.Post("/views", handler.CreateView)
	r.Get("/views/{id}", handler.View)
	r.Put("/views/{id}", handler.UpdateView)
	r.Delete("/views/{id}", handler.DeleteView)
	return r
}

// TestSavedViewHandler_CRUD tests the full lifecycle through HTTP.
//
// WHY: The view endpoints are the only write surface users interact with
// directly. The status-code contract (201 create, 404 unknown, 400 invalid,
// 204 delete) is what the frontend branches on.
func TestSavedViewHandler_CRUD(t *testing.T) {
	router := viewRouter(t)

	// Create
	payload := `{"name":"Tech","assetTypes":["security"],"groupBy":"sector"}`
	req := httptest.NewRequest(http.MethodPost, "/views", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created model.SavedView
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode created view: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected created view to carry an ID")
	}

	// Read back
	req = httptest.NewRequest(http.MethodGet, "/views/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// Update
	payload = `{"name":"Tech v2","groupBy":"account"}`
	req = httptest.NewRequest(http.MethodPut, "/views/"+created.ID, bytes.NewBufferString(payload))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on update, got %d: %s", w.Code, w.Body.String())
	}
	var updated model.SavedView
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode updated view: %v", err)
	}
	if updated.Name != "Tech v2" || updated.GroupBy != model.GroupByAccount {
		t.Errorf("Update not applied: %+v", updated)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/views/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 on delete, got %d", w.Code)
	}

	// Gone afterwards
	req = httptest.NewRequest(http.MethodGet, "/views/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

// TestSavedViewHandler_Validation tests the 400 paths.
func TestSavedViewHandler_Validation(t *testing.T) {
	router := viewRouter(t)

	t.Run("nameless view rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/views", bytes.NewBufferString(`{"groupBy":"none"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("malformed view ID rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/views/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/views", bytes.NewBufferString(`{`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}
