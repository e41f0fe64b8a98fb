package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseNominatimItems(t *testing.T) {
	items := []nominatimItem{
		{
			Lat:         "32.7940",
			Lon:         "34.9896",
			DisplayName: "Haifa, Israel",
			Importance:  0.72,
		},
	}
	res, err := parseNominatimItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Lat != 32.7940 || res.Lon != 34.9896 {
		t.Fatalf("unexpected coordinates: %+v", res)
	}
	if res.DisplayName != "Haifa, Israel" {
		t.Fatalf("unexpected display name: %s", res.DisplayName)
	}
	if _, err := parseNominatimItems(nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNominatimCachesQueries(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("q") != "Herzl 5, Israel" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"32.1","lon":"34.8","display_name":"Herzl 5","importance":0.5}]`))
	}))
	defer srv.Close()

	g := &NominatimGeocoder{BaseURL: srv.URL, MinInterval: time.Millisecond}
	for i := 0; i < 2; i++ {
		res, err := g.Geocode(context.Background(), "Herzl 5, Israel")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Lat != 32.1 || res.DisplayName != "Herzl 5" {
			t.Fatalf("unexpected result: %+v", res)
		}
	}
	if hits != 1 {
		t.Fatalf("hits=%d, want 1 (cached)", hits)
	}
}
