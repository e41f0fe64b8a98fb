package ai

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/floorquote/backend/internal/models"
)

// Image is one photo handed to the vision model.
type Image struct {
	Name      string
	MediaType string
	Data      []byte
}

// Analyzer produces one assessment per image. Implementations never return an error:
// failures are reported inside the assessment.
type Analyzer interface {
	Analyze(ctx context.Context, img Image, excerpt string) models.FloorAssessment
}

var ErrModelDisabled = errors.New("OpenAI API key not configured")

// ModelInvocationError wraps a transport or API failure of a single model call.
type ModelInvocationError struct {
	Image string
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("analyze %s: %v", e.Image, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// MediaTypeFor maps an image file extension to its MIME type.
func MediaTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Disabled is the assessment returned when no model credential is configured.
func Disabled(imageName string) models.FloorAssessment {
	return models.FloorAssessment{
		Success:         false,
		Error:           ErrModelDisabled.Error(),
		ImageName:       imageName,
		FloorType:       models.FloorUnknown,
		Condition:       models.ConditionUnknown,
		Damages:         []models.Damage{},
		AreaEstimateSqm: DefaultAreaSqm,
		Recommendations: []string{"Требуется настройка OpenAI API"},
		WorkComplexity:  models.ComplexityMedium,
	}
}

// Failed is the assessment for an image whose model call did not complete.
func Failed(imageName string, err error) models.FloorAssessment {
	return models.FloorAssessment{
		Success:         false,
		Error:           err.Error(),
		ImageName:       imageName,
		FloorType:       models.FloorUnknown,
		Condition:       models.ConditionUnknown,
		Damages:         []models.Damage{},
		Recommendations: []string{},
		WorkComplexity:  models.ComplexityMedium,
	}
}

// DisabledAnalyzer stands in for the model when no API key is set.
type DisabledAnalyzer struct{}

func (DisabledAnalyzer) Analyze(_ context.Context, img Image, _ string) models.FloorAssessment {
	return Disabled(img.Name)
}
