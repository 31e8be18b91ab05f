package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/ingress"
	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/reputation"
	"github.com/scamdetect/hybrid-scam-detector/internal/config"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/factory"
	"github.com/scamdetect/hybrid-scam-detector/internal/logging"
	"github.com/scamdetect/hybrid-scam-detector/internal/rules"
)

var (
	// LLM provider flags
	provider    = flag.String("provider", "gemini", "LLM provider (gemini, openai, bedrock)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	callTimeout = flag.String("call-timeout", "10s", "Timeout for a single LLM call")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4o-mini", "OpenAI model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Detection flags
	scamThreshold = flag.Float64("threshold", 0.5, "Final confidence threshold for the scam verdict")
	noEscalation  = flag.Bool("rules-only", false, "Disable the LLM escalation path")

	// Input flags
	inputFile  = flag.String("file", "", "Input message file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Read message from file or stdin
	var messageReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		messageReader = file
		logger.Info("Reading message from file", zap.String("file", *inputFile))
	} else {
		messageReader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	messageBytes, err := io.ReadAll(bufio.NewReader(messageReader))
	if err != nil {
		logger.Fatal("Failed to read message", zap.Error(err))
	}
	message := strings.TrimSpace(string(messageBytes))
	if message == "" {
		logger.Fatal("Empty message")
	}

	// Build the detector
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()

	llmFactory := factory.NewLLMFactory(cfg, logger, textProcessor)
	oracle, err := llmFactory.CreateGenerativeAnalyzer()
	if err != nil {
		logger.Fatal("Failed to create oracle adapter", zap.Error(err))
	}

	cacheFactory := factory.NewCacheFactory(cfg, logger)
	cache, err := cacheFactory.CreateCache()
	if err != nil {
		logger.Fatal("Failed to create reputation cache", zap.Error(err))
	}
	ttl, err := cacheFactory.CacheTTL()
	if err != nil {
		logger.Fatal("Invalid cache TTL", zap.Error(err))
	}
	fetchTimeout, err := cfg.GetDuration("reputation.fetch_timeout")
	if err != nil {
		logger.Fatal("Invalid fetch timeout", zap.Error(err))
	}

	// One-shot analyses have no external reputation service wired up
	source := reputation.NewStaticSource(nil)

	detector, err := core.NewHybridDetector(
		rules.NewKeywordMatcher(logger),
		rules.NewURLRiskAnalyzer(logger, cfg.GetStringSlice("url.extra_malicious_domains")),
		rules.NewPhoneReputationAnalyzer(cache, source, logger, ttl, fetchTimeout),
		oracle,
		textProcessor,
		cfg.GetFusion(),
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create detector", zap.Error(err))
	}

	cli := ingress.NewCLIIngress(detector, logger, *verbose)
	verdict := cli.ProcessMessage(context.Background(), message, !*noEscalation)

	if err := oracle.Close(); err != nil {
		logger.Error("Failed to close oracle", zap.Error(err))
	}
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if verdict.IsScam {
		os.Exit(2)
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", *provider)
	v.Set("llm.call_timeout", *callTimeout)

	// Set provider-specific configuration
	switch *provider {
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
	}

	// Set detection threshold
	v.Set("fusion.final_scam_threshold", *scamThreshold)

	return config.NewFromViper(v)
}
