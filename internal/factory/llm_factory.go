package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/bedrock"
	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/gemini"
	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/openai"
	"github.com/scamdetect/hybrid-scam-detector/internal/config"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/llm"
	"github.com/scamdetect/hybrid-scam-detector/internal/utils"
)

// LLMFactory creates the generative analyzer adapter
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGenerativeAnalyzer creates the lazy oracle adapter for the
// configured provider. The provider client itself is not constructed until
// the adapter's first initialization.
func (f *LLMFactory) CreateGenerativeAnalyzer() (*llm.LazyAnalyzer, error) {
	callTimeout, err := f.cfg.GetDuration("llm.call_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid llm call timeout: %w", err)
	}

	var clientFactory llm.ClientFactory
	provider := f.cfg.GetLLM().Provider

	switch provider {
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		clientFactory = func(ctx context.Context) (core.GenerativeClient, error) {
			return gemini.NewClient(ctx, geminiCfg.APIKey, geminiCfg.ModelName,
				geminiCfg.MaxTokens, geminiCfg.Temperature, geminiCfg.TopP, f.logger)
		}
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		clientFactory = func(ctx context.Context) (core.GenerativeClient, error) {
			return openai.NewClient(openaiCfg.APIKey, openaiCfg.ModelName,
				openaiCfg.MaxTokens, openaiCfg.Temperature, openaiCfg.TopP, f.logger), nil
		}
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		clientFactory = func(ctx context.Context) (core.GenerativeClient, error) {
			return bedrock.NewClient(ctx, bedrockCfg.Region, bedrockCfg.ModelID,
				bedrockCfg.MaxTokens, bedrockCfg.Temperature, bedrockCfg.TopP, f.logger)
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	return llm.NewLazyAnalyzer(clientFactory, f.logger, f.textProcessor, callTimeout), nil
}
