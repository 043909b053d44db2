package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_HandleOrders(t *testing.T) {
	t.Run("proxies GET /orders with query", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders" {
				t.Errorf("expected /orders, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("status") != "pending" {
				t.Errorf("expected status=pending, got %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[{"id":"1"}]`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(
			NewServiceProxy(ordersServer.URL, ordersServer.Client()),
			NewServiceProxy("http://unused", http.DefaultClient),
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/orders?status=pending", nil)
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
		}
		if rec.Body.String() != `[{"id":"1"}]` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("proxies POST /orders with body", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"customerName":"Олена"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"new-id"}`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(
			NewServiceProxy(ordersServer.URL, ordersServer.Client()),
			NewServiceProxy("http://unused", http.DefaultClient),
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerName":"Олена"}`))
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("preserves downstream error status", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"cannot change status"}`))
		}))
		defer ordersServer.Close()

		handler := NewHandler(
			NewServiceProxy(ordersServer.URL, ordersServer.Client()),
			NewServiceProxy("http://unused", http.DefaultClient),
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodPatch, "/orders/abc/status", strings.NewReader(`{"status":"pending"}`))
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when orders service unavailable", func(t *testing.T) {
		handler := NewHandler(
			NewServiceProxy("http://localhost:99999", &http.Client{}),
			NewServiceProxy("http://unused", http.DefaultClient),
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()

		handler.HandleOrders(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "service unavailable" {
			t.Errorf("expected 'service unavailable', got %s", resp["error"])
		}
	})
}

func TestHandler_HandleAnalytics(t *testing.T) {
	t.Run("forwards period query to analytics upstream", func(t *testing.T) {
		analyticsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/analytics" {
				t.Errorf("expected /analytics, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("period") != "30d" {
				t.Errorf("expected period=30d, got %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"period":"30d","totalOrders":0}`))
		}))
		defer analyticsServer.Close()

		handler := NewHandler(
			NewServiceProxy("http://unused", http.DefaultClient),
			NewServiceProxy(analyticsServer.URL, analyticsServer.Client()),
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/analytics?period=30d", nil)
		rec := httptest.NewRecorder()

		handler.HandleAnalytics(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when analytics upstream unavailable", func(t *testing.T) {
		handler := NewHandler(
			NewServiceProxy("http://unused", http.DefaultClient),
			NewServiceProxy("http://localhost:99999", &http.Client{}),
			discardLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
		rec := httptest.NewRecorder()

		handler.HandleAnalytics(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}
	})
}
