package ingress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// CLIIngress analyzes a single message and prints the verdict
type CLIIngress struct {
	detector *core.HybridDetector
	logger   *zap.Logger
	verbose  bool
}

// NewCLIIngress creates a new CLI ingress
func NewCLIIngress(detector *core.HybridDetector, logger *zap.Logger, verbose bool) *CLIIngress {
	return &CLIIngress{
		detector: detector,
		logger:   logger,
		verbose:  verbose,
	}
}

// ProcessMessage analyzes one message and displays the results
func (i *CLIIngress) ProcessMessage(ctx context.Context, message string, allowEscalation bool) *core.ScamVerdict {
	i.logger.Debug("Processing message", zap.Int("length", len(message)))

	fmt.Printf("\n=== Message ===\n")
	preview := message
	if !i.verbose && len([]rune(preview)) > 200 {
		preview = string([]rune(preview)[:200]) + "..."
	}
	fmt.Printf("%s\n\n", preview)

	fmt.Printf("=== Analysis ===\n")
	startTime := time.Now()
	verdict := i.detector.Analyze(ctx, message, allowEscalation)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Is scam: %t\n", verdict.IsScam)
	fmt.Printf("Confidence: %.4f\n", verdict.Confidence)
	fmt.Printf("Scam type: %s\n", verdict.ScamType)
	fmt.Printf("Detection method: %s\n", verdict.DetectionMethod)
	if len(verdict.Reasons) > 0 {
		fmt.Printf("Reasons:\n")
		for _, reason := range verdict.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
	if len(verdict.DetectedKeywords) > 0 {
		fmt.Printf("Detected keywords: %s\n", strings.Join(verdict.DetectedKeywords, ", "))
	}
	if len(verdict.SuspiciousParts) > 0 {
		fmt.Printf("Suspicious parts: %s\n", strings.Join(verdict.SuspiciousParts, " | "))
	}
	if verdict.WarningMessage != "" {
		fmt.Printf("Warning: %s\n", verdict.WarningMessage)
	}
	fmt.Printf("Processing time: %v\n", duration)

	return verdict
}

// Start is a no-op for the CLI ingress
func (i *CLIIngress) Start(ctx context.Context) error {
	return nil
}

// Stop is a no-op for the CLI ingress
func (i *CLIIngress) Stop() error {
	return nil
}
