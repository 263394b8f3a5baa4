package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	vectormocks "docuchat/internal/vectorstore/mocks"
)

func TestHealthHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	vectors := vectormocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().
		CollectionExists(gomock.Any(), "documents").
		Return(true, nil)

	handler := NewHealthHandler(vectors, "documents")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q", resp.Status)
	}
	if resp.Checks["vector_store"] != "ok" {
		t.Errorf("vector_store check = %q", resp.Checks["vector_store"])
	}
}

func TestHealthVectorStoreDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	vectors := vectormocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().
		CollectionExists(gomock.Any(), "documents").
		Return(false, errors.New("connection refused"))

	handler := NewHealthHandler(vectors, "documents")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Status = %q", resp.Status)
	}
	if len(resp.Issues) == 0 {
		t.Error("Issues empty, want vector_store_unavailable")
	}
}

func TestHealthMissingCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	vectors := vectormocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().
		CollectionExists(gomock.Any(), "documents").
		Return(false, nil)

	handler := NewHealthHandler(vectors, "documents")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
