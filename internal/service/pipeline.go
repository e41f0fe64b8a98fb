package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/floorquote/backend/internal/ai"
	"github.com/floorquote/backend/internal/archive"
	"github.com/floorquote/backend/internal/models"
	"github.com/floorquote/backend/internal/transcript"
)

var ErrNoImagesFound = errors.New("no images found")

// AddressEnricher fills ClientInfo.Location from the extracted address text.
type AddressEnricher interface {
	Enrich(ctx context.Context, client *models.ClientInfo) error
}

type Pipeline struct {
	Analyzer    ai.Analyzer
	Operator    string
	Concurrency int
	Archive     archive.Options
	Enricher    AddressEnricher
	Logger      zerolog.Logger
}

type ExportResult struct {
	Messages   []models.ChatMessage   `json:"messages"`
	Media      []models.MediaFile     `json:"media"`
	Client     models.ClientInfo      `json:"client"`
	Context    string                 `json:"context"`
	Assessment models.FloorAssessment `json:"assessment"`
}

// ProcessExport runs one chat export end to end. The extracted tree is removed before
// returning on every path, so MediaFile paths in the result are no longer readable.
func (p *Pipeline) ProcessExport(ctx context.Context, data []byte) (ExportResult, error) {
	start := time.Now()
	exp, err := archive.Extract(data, p.Archive)
	if err != nil {
		return ExportResult{}, err
	}
	defer func() {
		if err := exp.Close(); err != nil {
			p.Logger.Warn().Err(err).Msg("cleanup extracted export")
		}
	}()

	res := ExportResult{Media: exp.Media, Messages: []models.ChatMessage{}}

	text, found, err := exp.ReadTranscript()
	switch {
	case err != nil:
		p.Logger.Warn().Err(err).Msg("transcript unreadable, continuing without context")
	case !found:
		p.Logger.Info().Msg("export has no transcript")
	default:
		res.Messages = transcript.Parse(text)
	}

	res.Client = transcript.ExtractClientInfo(res.Messages, p.Operator)
	res.Context = transcript.BuildContext(res.Messages)
	p.enrich(ctx, &res.Client)

	images := exp.Images()
	p.Logger.Info().
		Int("messages", len(res.Messages)).
		Int("media", len(exp.Media)).
		Int("images", len(images)).
		Str("client", res.Client.Name).
		Msg("export parsed")
	if len(images) == 0 {
		return res, ErrNoImagesFound
	}

	results := p.AnalyzeImages(ctx, images, res.Context)
	res.Assessment = Aggregate(results, res.Context)

	p.Logger.Info().
		Str("floor_type", string(res.Assessment.FloorType)).
		Str("condition", string(res.Assessment.Condition)).
		Float64("area", res.Assessment.AreaEstimateSqm).
		Dur("took", time.Since(start)).
		Msg("export analyzed")
	return res, nil
}

// AnalyzeImages analyzes every image with at most Concurrency calls in flight. Results keep
// the input order whatever the completion order; a failed image never stops its siblings.
func (p *Pipeline) AnalyzeImages(ctx context.Context, images []models.MediaFile, excerpt string) []models.FloorAssessment {
	results := make([]models.FloorAssessment, len(images))

	limit := p.Concurrency
	if limit <= 0 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, m := range images {
		i, m := i, m
		g.Go(func() error {
			p.Logger.Info().Msgf("analyzing image %d/%d: %s", i+1, len(images), m.DisplayName)
			results[i] = p.analyzeFile(ctx, m, excerpt)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) analyzeFile(ctx context.Context, m models.MediaFile, excerpt string) models.FloorAssessment {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		p.Logger.Warn().Err(err).Str("image", m.DisplayName).Msg("read image")
		return ai.Failed(m.DisplayName, fmt.Errorf("read image: %w", err))
	}
	return p.Analyzer.Analyze(ctx, ai.Image{
		Name:      m.DisplayName,
		MediaType: ai.MediaTypeFor(m.DisplayName),
		Data:      data,
	}, excerpt)
}

// PhotoError reports a single photo whose analysis did not succeed.
type PhotoError struct {
	Message string
}

func (e *PhotoError) Error() string { return "photo analysis failed: " + e.Message }

// ProcessPhoto analyzes one standalone photo with its caption as context. Unlike exports a
// failed analysis is returned as an error since there is nothing to aggregate.
func (p *Pipeline) ProcessPhoto(ctx context.Context, data []byte, name, caption string) (models.FloorAssessment, error) {
	if name == "" {
		name = "photo.jpg"
	}
	single := p.Analyzer.Analyze(ctx, ai.Image{Name: name, MediaType: ai.MediaTypeFor(name), Data: data}, caption)
	if !single.Success {
		return single, &PhotoError{Message: single.Error}
	}
	return Aggregate([]models.FloorAssessment{single}, caption), nil
}

func (p *Pipeline) enrich(ctx context.Context, client *models.ClientInfo) {
	if p.Enricher == nil || client.Address == "" {
		return
	}
	if err := p.Enricher.Enrich(ctx, client); err != nil {
		p.Logger.Warn().Err(err).Msg("address enrichment failed")
	}
}
