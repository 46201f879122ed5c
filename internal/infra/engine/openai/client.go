// Package openai is an alternative scoring engine backed by a chat completion model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/domain/engine"
)

const (
	maxTokens    = 4096
	DefaultModel = "gpt-4o-mini"
)

type Client struct {
	api   *openai.Client
	model string
	clock application.Clock
}

// NewClient buat engine OpenAI. baseURL kosong = endpoint resmi.
func NewClient(apiKey, model, baseURL string, clock application.Clock) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model, clock: clock}
}

// Analyze implementasi domain.Engine. Hasil model dibungkus envelope live.
func (c *Client) Analyze(ctx context.Context, req domain.EngineRequest) (*domain.EngineResult, error) {
	creq := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(req)},
		},
	}
	// reasoning models (o1/o3/o4/gpt-5*) pakai MaxCompletionTokens
	if isReasoningModel(c.model) {
		creq.MaxCompletionTokens = maxTokens
	} else {
		creq.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.EngineError{Kind: domain.EngineUpstreamStatus, StatusCode: http.StatusBadGateway, Body: "empty completion"}
	}

	content := resp.Choices[0].Message.Content
	var data engine.LiveData
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, &domain.EngineError{Kind: domain.EngineContentType, StatusCode: http.StatusOK, Body: content, Err: err}
	}

	data.IDDokumen = engine.FlexString(resp.ID)
	data.IDInstansi = engine.FlexInt(req.InstitutionID)
	data.JudulKegiatan = req.Title
	data.DeskripsiKegiatan = req.Description
	data.IncludeDokKeuangan = engine.FlexBool(req.IncludeFinancial)
	if req.ActivityDocument != nil {
		data.PathDokKegiatan = req.ActivityDocument.Filename
	}
	if req.IncludeFinancial && req.FinancialDocument != nil {
		name := req.FinancialDocument.Filename
		data.PathDokKeuangan = &name
	}

	raw, err := json.Marshal(engine.LiveResponse{
		Status:    "success",
		Message:   "Analisis berhasil",
		Timestamp: c.clock.Now().UTC().Format(time.RFC3339),
		Data:      &data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode live envelope: %w", err)
	}
	return &domain.EngineResult{Raw: raw, StatusCode: http.StatusOK}, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.EngineError{
			Kind:       domain.EngineUpstreamStatus,
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
			Err:        err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.EngineError{
			Kind:       domain.EngineUpstreamStatus,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
			Err:        err,
		}
	}
	return &domain.EngineError{Kind: domain.EngineUnreachable, Err: err}
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
