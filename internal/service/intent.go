package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nightbite/internal/heuristic"
	"nightbite/internal/model"
	"nightbite/internal/utils"
)

const systemPrompt = `You convert restaurant and bar search phrases into a JSON filter.

Respond ONLY with a JSON object with exactly these fields:
- terms: array of lowercase cuisine or vibe keywords (e.g. "ramen", "izakaya", "cozy")
- locationTerms: array of lowercase neighborhood or city names (e.g. "shibuya")
- targetMinutes: integer minutes past midnight for the desired visiting time, or null
- maxBudgetYen: integer spending cap in yen, or null
- wantsNearby: boolean

Rules:
- "cheap", "affordable", "low-cost", "inexpensive" mean maxBudgetYen 1000
- "mid-range", "moderate", "casual" mean maxBudgetYen 3000
- explicit amounts are taken literally: "under 2000 yen" = 2000, "¥1500" = 1500, "3k" = 3000
- if several budgets are implied, use the smallest
- "late night"/"midnight" = 1380, "brunch" = 660, "breakfast"/"morning" = 480,
  "lunch"/"midday" = 720, "dinner"/"evening" = 1140; an explicit clock time wins
- "near me", "nearby", "close by", "around me" mean wantsNearby true
- do not repeat location, time, budget or proximity words inside terms

Examples:
Query: "late night ramen in shibuya"
Response: {"terms": ["ramen"], "locationTerms": ["shibuya"], "targetMinutes": 1380, "maxBudgetYen": null, "wantsNearby": false}

Query: "cheap izakaya near me"
Response: {"terms": ["izakaya"], "locationTerms": [], "targetMinutes": null, "maxBudgetYen": 1000, "wantsNearby": true}`

// ResolutionRecorder receives a record of every resolution. Implementations
// must be safe for concurrent use.
type ResolutionRecorder interface {
	RecordResolution(ctx context.Context, rec model.ResolutionRecord) error
}

// Refiner asks a hosted language model for a ParsedIntent and falls back to
// the heuristic extractor whenever the answer cannot be used
type Refiner struct {
	client   ChatClient
	model    string
	recorder ResolutionRecorder
	logger   *zap.Logger
}

// NewRefiner creates a new refiner. client and recorder may be nil.
func NewRefiner(client ChatClient, modelName string, recorder ResolutionRecorder, logger *zap.Logger) *Refiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refiner{
		client:   client,
		model:    modelName,
		recorder: recorder,
		logger:   logger.Named("refiner"),
	}
}

// Refine resolves raw into an envelope. It never fails: any problem with the
// remote call yields the heuristic result with source "heuristic".
func (r *Refiner) Refine(ctx context.Context, raw string) model.ResolutionEnvelope {
	query := strings.TrimSpace(raw)
	if query == "" {
		return model.ResolutionEnvelope{Intent: nil, Source: model.SourceEmpty}
	}

	start := time.Now()
	intent, err := r.refineWithAI(ctx, query)

	var envelope model.ResolutionEnvelope
	if err != nil {
		stage := FailureStage(err)
		if stage == "credentials" {
			r.logger.Debug("remote refinement disabled, using heuristic", zap.String("query", query))
		} else {
			r.logger.Warn("remote refinement failed, using heuristic",
				zap.String("stage", stage),
				zap.String("query", query),
				zap.Error(err))
		}
		fallback := heuristic.Extract(query)
		envelope = model.ResolutionEnvelope{Intent: &fallback, Source: model.SourceHeuristic}
	} else {
		envelope = model.ResolutionEnvelope{Intent: &intent, Source: model.SourceGroq}
	}

	r.record(query, envelope, err, time.Since(start))
	return envelope
}

// refineWithAI returns the validated model answer or the first failure
func (r *Refiner) refineWithAI(ctx context.Context, query string) (model.ParsedIntent, error) {
	if r.client == nil || !r.client.IsEnabled() {
		return model.ParsedIntent{}, ErrNotConfigured
	}

	req := ChatCompletionRequest{
		Model: r.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature:    0,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := r.client.ChatCompletion(ctx, req)
	if err != nil {
		return model.ParsedIntent{}, err
	}

	content, err := resp.FirstContent()
	if err != nil {
		return model.ParsedIntent{}, err
	}

	payload, err := utils.ParseAIJSON(content)
	if err != nil {
		return model.ParsedIntent{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}

	intent, ok := NormalizeIntent(payload)
	if !ok {
		return model.ParsedIntent{}, fmt.Errorf("%w: got %T", ErrInvalidIntent, payload)
	}

	r.logger.Debug("remote refinement accepted",
		zap.String("query", query),
		zap.Strings("terms", intent.Terms),
		zap.Strings("location_terms", intent.LocationTerms))

	return intent, nil
}

// record hands the resolution to the recorder without blocking the caller
func (r *Refiner) record(query string, envelope model.ResolutionEnvelope, cause error, latency time.Duration) {
	if r.recorder == nil {
		return
	}

	rec := model.ResolutionRecord{
		Query:        query,
		Source:       envelope.Source,
		Intent:       envelope.Intent,
		FailureStage: FailureStage(cause),
		Model:        r.model,
		Latency:      latency,
	}
	if cause != nil {
		rec.FailureCause = cause.Error()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.recorder.RecordResolution(ctx, rec); err != nil {
			r.logger.Warn("failed to record resolution", zap.String("query", query), zap.Error(err))
		}
	}()
}
