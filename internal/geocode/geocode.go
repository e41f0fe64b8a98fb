package geocode

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/floorquote/backend/internal/models"
	"github.com/floorquote/backend/internal/utils"
)

var ErrNotFound = errors.New("geocode not found")

type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Confidence  float64
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

var addressLabel = regexp.MustCompile(`(?i)^\s*(мой\s+)?(адрес|address)\s*[:\-]?\s*`)

// CleanAddress strips a leading "Адрес:" style label from a chat message body.
func CleanAddress(body string) string {
	body = strings.TrimSpace(strings.ReplaceAll(body, "\n", ", "))
	return strings.TrimSpace(addressLabel.ReplaceAllString(body, ""))
}

func BuildQuery(country string, address string) string {
	country = strings.TrimSpace(country)
	address = strings.TrimSpace(address)
	parts := []string{}
	if address != "" {
		parts = append(parts, address)
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

// Enricher attaches coordinates and the distance from the operator's base to a client address.
type Enricher struct {
	Geocoder Geocoder
	Country  string
	BaseLat  float64
	BaseLon  float64
}

// Enrich is best effort: on any failure the client is left untouched and the error returned
// for logging only.
func (e *Enricher) Enrich(ctx context.Context, client *models.ClientInfo) error {
	address := CleanAddress(client.Address)
	if address == "" {
		return nil
	}
	res, err := e.Geocoder.Geocode(ctx, BuildQuery(e.Country, address))
	if err != nil {
		return err
	}
	client.Location = &models.Location{
		Lat:         res.Lat,
		Lon:         res.Lon,
		DisplayName: res.DisplayName,
		DistanceKm:  roundKm(utils.HaversineKm(e.BaseLat, e.BaseLon, res.Lat, res.Lon)),
	}
	return nil
}

func roundKm(km float64) float64 {
	return float64(int(km*10+0.5)) / 10
}
