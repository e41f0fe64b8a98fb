package ai

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/rs/zerolog"

	"github.com/floorquote/backend/internal/models"
)

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int64
	Timeout         time.Duration
}

// OpenAIAnalyzer sends each photo to a vision model through the Responses API and asks for a
// strict JSON document. Calls are never retried.
type OpenAIAnalyzer struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
	timeout         time.Duration
	schema          map[string]interface{}
	log             zerolog.Logger
}

// NewAnalyzer returns the OpenAI analyzer, or a DisabledAnalyzer when no key is configured.
func NewAnalyzer(cfg OpenAIConfig, log zerolog.Logger, opts ...option.RequestOption) Analyzer {
	if cfg.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, image analysis disabled")
		return DisabledAnalyzer{}
	}
	return NewOpenAIAnalyzer(cfg, log, opts...)
}

func NewOpenAIAnalyzer(cfg OpenAIConfig, log zerolog.Logger, opts ...option.RequestOption) *OpenAIAnalyzer {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	return &OpenAIAnalyzer{
		client:          openai.NewClient(clientOpts...),
		model:           model,
		maxOutputTokens: maxTokens,
		timeout:         cfg.Timeout,
		schema:          GenerateSchema[modelResponse](),
		log:             log,
	}
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, img Image, excerpt string) models.FloorAssessment {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := a.complete(ctx, BuildPrompt(excerpt), img)
	if err != nil {
		invErr := &ModelInvocationError{Image: img.Name, Err: err}
		a.log.Warn().Err(err).Str("image", img.Name).Msg("model call failed")
		return Failed(img.Name, invErr)
	}

	assessment, ok := Interpret(raw)
	if !ok {
		a.log.Warn().Str("image", img.Name).Msg("model output is not JSON, using keyword fallback")
	}
	assessment.ImageName = img.Name
	a.log.Debug().
		Str("image", img.Name).
		Str("floor_type", string(assessment.FloorType)).
		Dur("latency", time.Since(start)).
		Msg("image analyzed")
	return assessment
}

func (a *OpenAIAnalyzer) complete(ctx context.Context, prompt string, img Image) (string, error) {
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = MediaTypeFor(img.Name)
	}
	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	content := responses.ResponseInputMessageContentListParam{
		responses.ResponseInputContentParamOfInputText(prompt),
		{OfInputImage: &responses.ResponseInputImageParam{
			Detail:   responses.ResponseInputImageDetailAuto,
			ImageURL: openai.String(dataURL),
		}},
	}

	params := responses.ResponseNewParams{
		Model:           a.model,
		MaxOutputTokens: openai.Int(a.maxOutputTokens),
		Temperature:     openai.Float(0.1),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   "floor_assessment",
					Schema: a.schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}
