package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// NominatimGeocoder queries OpenStreetMap Nominatim, keeping to one request per MinInterval
// and caching answers for the process lifetime.
type NominatimGeocoder struct {
	BaseURL     string
	UserAgent   string
	Language    string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string]Result
}

type nominatimItem struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (Result, error) {
	if g.Client == nil {
		g.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if g.BaseURL == "" {
		g.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if g.UserAgent == "" {
		g.UserAgent = "floorquote-backend"
	}
	if g.MinInterval <= 0 {
		g.MinInterval = time.Second
	}

	g.mu.Lock()
	if g.cache == nil {
		g.cache = map[string]Result{}
	}
	if cached, ok := g.cache[query]; ok {
		g.mu.Unlock()
		return cached, nil
	}
	wait := time.Until(g.lastReqAt.Add(g.MinInterval))
	g.lastReqAt = time.Now().Add(max(wait, 0))
	g.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if g.Language != "" {
		params.Set("accept-language", g.Language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return Result{}, err
	}
	result, err := parseNominatimItems(items)
	if err != nil {
		return Result{}, err
	}

	g.mu.Lock()
	g.cache[query] = result
	g.mu.Unlock()

	return result, nil
}

func parseNominatimItems(items []nominatimItem) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNotFound
	}
	lat, err := strconv.ParseFloat(items[0].Lat, 64)
	if err != nil {
		return Result{}, err
	}
	lon, err := strconv.ParseFloat(items[0].Lon, 64)
	if err != nil {
		return Result{}, err
	}
	if lat == 0 && lon == 0 && items[0].DisplayName == "" {
		return Result{}, ErrNotFound
	}
	return Result{
		Lat:         lat,
		Lon:         lon,
		DisplayName: items[0].DisplayName,
		Confidence:  items[0].Importance,
	}, nil
}
