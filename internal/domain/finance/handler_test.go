package finance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestHandlerCreate(t *testing.T) {
	svc, _, ledger := newTestService()
	medID := uuid.New()
	ledger.stocks[medID] = 50
	h := NewHandler(svc)

	body := `{"tx_date":"2025-03-10T00:00:00Z","description":"Restock","category":"Medicine & Vitamins","type":"out","amount":120000,"quantity":10,"medicine_id":"` + medID.String() + `"}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var got Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID == uuid.Nil {
		t.Error("response missing generated id")
	}
	if ledger.stocks[medID] != 60 {
		t.Errorf("stock = %d, want 60", ledger.stocks[medID])
	}
}

func TestHandlerCreateRejectsBadCategory(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	body := `{"description":"x","category":"Snacks","type":"out","amount":100}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerSummaryRejectsBadDate(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/transactions/summary?from=yesterday", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Summary(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerGetUnknownID(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/transactions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
