package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPGatewayInvoke(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/search_restaurants" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"location":"Paris","coordinates":[48.8566,2.3522],"places":[],"count":0}`))
	}))
	defer ts.Close()

	g := NewHTTPGateway(ts.URL)
	result := g.Invoke(context.Background(), Request{
		ID:   "call-1",
		Tool: ToolSearchRestaurants,
		Args: map[string]any{"location": "Paris"},
	})

	if !result.OK {
		t.Fatalf("Invoke failed: %s", result.Error)
	}
	if result.ID != "call-1" || result.Tool != ToolSearchRestaurants {
		t.Errorf("result identity = %q/%q", result.ID, result.Tool)
	}

	var payload SearchResult
	if err := result.Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Location != "Paris" {
		t.Errorf("location = %q", payload.Location)
	}
}

func TestHTTPGatewayRejectsLocally(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	g := NewHTTPGateway(ts.URL)
	result := g.Invoke(context.Background(), Request{
		ID:   "call-2",
		Tool: ToolSearchRestaurants,
		Args: map[string]any{}, // missing required location
	})

	if result.OK {
		t.Fatal("expected validation failure")
	}
	if called {
		t.Error("invalid arguments reached the service")
	}
}

func TestHTTPGatewayServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"data backend offline"}`))
	}))
	defer ts.Close()

	g := NewHTTPGateway(ts.URL)
	result := g.Invoke(context.Background(), Request{
		ID:   "call-3",
		Tool: ToolGetActivities,
		Args: map[string]any{"location": "Tokyo"},
	})

	if result.OK {
		t.Fatal("expected failure result")
	}
	if want := "data backend offline"; !strings.Contains(result.Error, want) {
		t.Errorf("error %q missing detail %q", result.Error, want)
	}
}

func TestHTTPGatewayUnreachable(t *testing.T) {
	g := NewHTTPGateway("http://127.0.0.1:1", WithInvokeTimeout(500*time.Millisecond))
	result := g.Invoke(context.Background(), Request{
		ID:   "call-4",
		Tool: ToolGetActivities,
		Args: map[string]any{"location": "Tokyo"},
	})

	if result.OK {
		t.Fatal("expected transport failure result")
	}
	if result.Error == "" {
		t.Error("missing error detail")
	}
}

func TestHTTPGatewayTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	g := NewHTTPGateway(ts.URL, WithInvokeTimeout(20*time.Millisecond))
	result := g.Invoke(context.Background(), Request{
		ID:   "call-5",
		Tool: ToolGetActivities,
		Args: map[string]any{"location": "Tokyo"},
	})

	if result.OK {
		t.Fatal("expected timeout failure result")
	}
}
