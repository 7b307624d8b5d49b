package services

import (
	"context"
	"encoding/json"

	"github.com/alimgiray/bizscope/internal/llm"
	"github.com/alimgiray/bizscope/internal/models"
	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ChatCompleter is the transport the analysis service talks to
type ChatCompleter interface {
	Complete(ctx context.Context, req llm.ChatRequest) (string, error)
}

// AnalysisOptions holds the model parameters for generation calls
type AnalysisOptions struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	SectionMaxTokens int
}

// DefaultAnalysisOptions returns the parameters used when none are configured
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Model:            "gpt-4o-mini",
		Temperature:      0.7,
		MaxTokens:        2000,
		SectionMaxTokens: 1500,
	}
}

type AnalysisService struct {
	client ChatCompleter
	opts   AnalysisOptions
}

func NewAnalysisService(client ChatCompleter, opts AnalysisOptions) *AnalysisService {
	defaults := DefaultAnalysisOptions()
	if opts.Model == "" {
		opts.Model = defaults.Model
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.SectionMaxTokens <= 0 {
		opts.SectionMaxTokens = defaults.SectionMaxTokens
	}
	return &AnalysisService{
		client: client,
		opts:   opts,
	}
}

// Generate asks the model for a complete analysis of the project. The
// response must carry a non-empty name and description; nested sections are
// taken as returned.
func (s *AnalysisService) Generate(ctx context.Context, name, description string) (*models.Analysis, error) {
	text, err := s.client.Complete(ctx, llm.ChatRequest{
		Model:       s.opts.Model,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		Messages: []llm.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: BuildAnalysisPrompt(name, description)},
		},
	})
	if err != nil {
		return nil, err
	}

	block, err := llm.ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	analysis, skipped, err := models.DecodeAnalysis([]byte(block))
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		logger.WithFields(logrus.Fields{
			"project_name": name,
			"skipped":      skipped,
		}).Warn("Analysis sections did not match their shape and were left empty")
	}
	return analysis, nil
}

// GenerateSection asks the model for a new value of one section and returns
// the raw JSON for it. The caller decides where to store it.
func (s *AnalysisService) GenerateSection(ctx context.Context, analysis *models.Analysis, key models.SectionKey, hint string) (json.RawMessage, error) {
	prompt, err := buildSectionUserPrompt(analysis, key, hint)
	if err != nil {
		return nil, err
	}

	text, err := s.client.Complete(ctx, llm.ChatRequest{
		Model:       s.opts.Model,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.SectionMaxTokens,
		Messages: []llm.Message{
			{Role: "system", Content: sectionSystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	var block string
	if key.IsArray() {
		block, err = llm.ExtractJSONArray(text)
	} else {
		block, err = llm.ExtractJSONObject(text)
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(block), nil
}
