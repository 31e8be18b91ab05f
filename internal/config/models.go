package config

import (
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// LLMConfig represents the configuration for the generative-oracle provider
type LLMConfig struct {
	Provider string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GetLLM returns the generative-oracle provider configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetFusion returns the fusion policy configuration. Validation happens at
// engine construction.
func (c *Config) GetFusion() core.FusionConfig {
	return core.FusionConfig{
		HighConfidenceThreshold:   c.GetFloat64("fusion.high_confidence_threshold"),
		MediumConfidenceThreshold: c.GetFloat64("fusion.medium_confidence_threshold"),
		LowConfidenceThreshold:    c.GetFloat64("fusion.low_confidence_threshold"),
		LLMTriggerLow:             c.GetFloat64("fusion.llm_trigger_low"),
		LLMTriggerHigh:            c.GetFloat64("fusion.llm_trigger_high"),
		RuleWeight:                c.GetFloat64("fusion.rule_weight"),
		LLMWeight:                 c.GetFloat64("fusion.llm_weight"),
		FinalScamThreshold:        c.GetFloat64("fusion.final_scam_threshold"),
	}
}
