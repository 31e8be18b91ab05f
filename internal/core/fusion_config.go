package core

import (
	"fmt"
	"math"
)

// FusionConfig holds the thresholds and weights of the three-path decision
// policy. It is supplied at construction and never mutated at runtime.
type FusionConfig struct {
	// HighConfidenceThreshold is the floor applied to strong-signal
	// short-circuit verdicts.
	HighConfidenceThreshold float64

	// MediumConfidenceThreshold marks rule evidence considered solid but
	// not conclusive.
	MediumConfidenceThreshold float64

	// LowConfidenceThreshold is the floor below which escalation is not
	// worth the cost and the rule-only result is returned directly.
	LowConfidenceThreshold float64

	// LLMTriggerLow and LLMTriggerHigh bound the rule-confidence band in
	// which the generative oracle is consulted.
	LLMTriggerLow  float64
	LLMTriggerHigh float64

	// RuleWeight and LLMWeight combine rule and oracle confidence during
	// fusion. They must sum to 1.
	RuleWeight float64
	LLMWeight  float64

	// FinalScamThreshold is the confidence above which a message is
	// declared a scam.
	FinalScamThreshold float64
}

// DefaultFusionConfig returns the production defaults. Rule evidence is
// weighted 30/70 against the oracle: messages reaching fusion are, by
// construction, cases rule evidence alone could not resolve.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		HighConfidenceThreshold:   0.85,
		MediumConfidenceThreshold: 0.6,
		LowConfidenceThreshold:    0.3,
		LLMTriggerLow:             0.3,
		LLMTriggerHigh:            0.7,
		RuleWeight:                0.3,
		LLMWeight:                 0.7,
		FinalScamThreshold:        0.5,
	}
}

// Validate rejects configurations that indicate a deployment defect. This is
// the one error class surfaced at construction time rather than at analysis
// time.
func (c FusionConfig) Validate() error {
	if math.Abs(c.RuleWeight+c.LLMWeight-1.0) > 1e-9 {
		return fmt.Errorf("fusion weights must sum to 1.0, got rule=%.3f llm=%.3f", c.RuleWeight, c.LLMWeight)
	}
	if c.RuleWeight < 0 || c.LLMWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative, got rule=%.3f llm=%.3f", c.RuleWeight, c.LLMWeight)
	}
	if c.LLMTriggerLow > c.LLMTriggerHigh {
		return fmt.Errorf("llm trigger band is inverted: low=%.3f high=%.3f", c.LLMTriggerLow, c.LLMTriggerHigh)
	}
	if c.LowConfidenceThreshold > c.MediumConfidenceThreshold || c.MediumConfidenceThreshold > c.HighConfidenceThreshold {
		return fmt.Errorf("confidence thresholds are out of order: low=%.3f medium=%.3f high=%.3f",
			c.LowConfidenceThreshold, c.MediumConfidenceThreshold, c.HighConfidenceThreshold)
	}
	for _, v := range []float64{
		c.HighConfidenceThreshold, c.MediumConfidenceThreshold, c.LowConfidenceThreshold,
		c.LLMTriggerLow, c.LLMTriggerHigh, c.FinalScamThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %.3f is outside [0,1]", v)
		}
	}
	return nil
}
