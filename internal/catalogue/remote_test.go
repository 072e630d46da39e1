package catalogue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestClientListItemsWalksAllPages(t *testing.T) {
	pages := []map[string]any{
		{
			"items": []map[string]any{
				{"url": "https://example.com/products/one/", "name": "One", "test_type": []string{"K"}},
			},
			"found": 2, "pages": 2, "page": 0, "per_page": 1,
		},
		{
			"items": []map[string]any{
				{"url": "https://example.com/products/two/", "name": "Two", "test_type": []string{"P"}},
			},
			"found": 2, "pages": 2, "page": 1, "per_page": 1,
		},
	}

	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")

		page := 0
		if r.URL.Query().Get("page") == "1" {
			page = 1
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pages[page])
	}))
	defer srv.Close()

	client := NewClient(context.Background(), zap.NewNop(), srv.URL, "secret-token")

	items, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items across pages, got %d", len(items))
	}

	if items[0].Name != "One" || items[1].Name != "Two" {
		t.Fatalf("unexpected items: %+v", items)
	}

	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}

	if gotAgent == "" {
		t.Fatalf("expected user agent to be set")
	}
}

func TestClientListItemsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), zap.NewNop(), srv.URL, "")

	if _, err := client.ListItems(context.Background()); err == nil {
		t.Fatalf("expected error on bad status")
	}
}
