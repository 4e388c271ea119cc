package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"finsight-go-api/internal/config"
	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/logging"
	"finsight-go-api/internal/models"
)

// ChatModel is the part of an eino chat model the generator uses.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// InsightService turns a snapshot and its web context into a markdown insight
// with one blocking chat-completion call.
type InsightService struct {
	chat    ChatModel
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewInsightService builds the OpenAI-compatible chat model for the configured
// endpoint. Without an API key the service is created but every call fails
// with ErrGenerationUnavailable.
func NewInsightService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*InsightService, error) {
	svc := &InsightService{
		model:   cfg.Completion.Model,
		timeout: cfg.Completion.Timeout,
		logger:  logging.WithComponent(logger, "insights"),
	}
	if cfg.Completion.APIKey == "" {
		return svc, nil
	}

	maxTokens := cfg.Completion.MaxTokens
	temperature := cfg.Completion.Temperature
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Completion.Timeout,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "create chat model")
	}
	svc.chat = chatModel
	return svc, nil
}

// NewInsightServiceWith builds the service over an explicit chat model, which may be nil.
func NewInsightServiceWith(chat ChatModel, modelName string, timeout time.Duration, logger zerolog.Logger) *InsightService {
	return &InsightService{
		chat:    chat,
		model:   modelName,
		timeout: timeout,
		logger:  logging.WithComponent(logger, "insights"),
	}
}

// Generate returns the markdown insight for the snapshot.
func (s *InsightService) Generate(ctx context.Context, snapshot *models.MarketSnapshot, results []models.SearchResult) (*models.Insight, error) {
	if s.chat == nil {
		return nil, fmt.Errorf("%w: completion api key is not configured", apperrors.ErrGenerationUnavailable)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage(BuildPrompt(snapshot, results)),
	}

	start := time.Now()
	resp, err := s.chat.Generate(genCtx, messages)
	logging.LogAPICall(s.logger, "completion", s.model, time.Since(start), err)
	if err != nil {
		return nil, apperrors.NewProviderError("completion", "generate", snapshot.Symbol, apperrors.ErrGenerationUnavailable, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, apperrors.NewProviderError("completion", "generate", snapshot.Symbol, apperrors.ErrGenerationUnavailable,
			fmt.Errorf("empty completion"))
	}

	return &models.Insight{
		Markdown:    strings.TrimSpace(resp.Content),
		Model:       s.model,
		GeneratedAt: time.Now(),
	}, nil
}
