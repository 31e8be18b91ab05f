package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/utils"
)

// State of the lazy adapter's one-shot initialization.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

// maxPromptChars bounds the raw message submitted to the oracle. Truncation
// is silent and expected, not exceptional.
const maxPromptChars = 1500

const promptFormat = `당신은 사기 메시지 탐지 시스템입니다. 아래 메시지가 사기인지 분석하세요.
다음 필드를 가진 JSON 객체 하나로만 응답하세요:
- isScam: boolean (사기이면 true)
- confidence: 0과 1 사이의 숫자
- scamType: 문자열 (investment, used trade, phishing, voice phishing, impersonation, romance, loan, safe 중 하나)
- warningMessage: 사용자에게 보여줄 한 문장 경고
- reasons: 판단 근거 문자열 배열
- suspiciousParts: 메시지에서 의심스러운 구절 배열 (최대 3개)

사전 규칙 분석 결과:
- 규칙 기반 신뢰도: %.2f
- 감지된 키워드: %s
- 판단 근거: %s
- 추출된 URL: %s
- 의심 URL: %s

메시지:
%s

JSON 객체 외에는 아무것도 출력하지 마세요.`

// oracleResponse mirrors the JSON object the oracle is asked to embed in its
// response.
type oracleResponse struct {
	IsScam          bool     `json:"isScam"`
	Confidence      float64  `json:"confidence"`
	ScamType        string   `json:"scamType"`
	WarningMessage  string   `json:"warningMessage"`
	Reasons         []string `json:"reasons"`
	SuspiciousParts []string `json:"suspiciousParts"`
}

// ClientFactory lazily constructs the generative client. It is invoked at
// most once per initialization attempt.
type ClientFactory func(ctx context.Context) (core.GenerativeClient, error)

// LazyAnalyzer wraps the opaque generative oracle behind a lazy one-shot
// initialization guard. Initialization is idempotent and single-flight:
// concurrent callers during cold start coalesce into one attempt. A failed
// attempt is not terminal; a later call retries.
type LazyAnalyzer struct {
	mu       sync.Mutex
	state    State
	initDone chan struct{}
	initErr  error
	client   core.GenerativeClient

	newClient     ClientFactory
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	timeout       time.Duration
}

// NewLazyAnalyzer creates the adapter. The client is not constructed until
// the first Initialize call.
func NewLazyAnalyzer(newClient ClientFactory, logger *zap.Logger, textProcessor *utils.TextProcessor, timeout time.Duration) *LazyAnalyzer {
	return &LazyAnalyzer{
		newClient:     newClient,
		logger:        logger,
		textProcessor: textProcessor,
		timeout:       timeout,
	}
}

// Initialize loads the generative client if it is not loaded yet. If another
// initialization attempt is in flight, the call waits for its result instead
// of starting a duplicate load.
func (a *LazyAnalyzer) Initialize(ctx context.Context) error {
	a.mu.Lock()
	switch a.state {
	case StateReady:
		a.mu.Unlock()
		return nil
	case StateInitializing:
		done := a.initDone
		a.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		a.mu.Lock()
		err := a.initErr
		a.mu.Unlock()
		return err
	}

	// Uninitialized or Failed: this caller runs the attempt.
	a.state = StateInitializing
	a.initDone = make(chan struct{})
	done := a.initDone
	a.mu.Unlock()

	client, err := a.newClient(ctx)

	a.mu.Lock()
	if err != nil {
		a.state = StateFailed
		a.initErr = fmt.Errorf("failed to initialize generative client: %w", err)
		a.logger.Warn("generative oracle initialization failed", zap.Error(err))
	} else {
		a.client = client
		a.state = StateReady
		a.initErr = nil
		a.logger.Info("generative oracle initialized")
	}
	err = a.initErr
	close(done)
	a.mu.Unlock()
	return err
}

// Ready reports whether the adapter can serve Analyze calls.
func (a *LazyAnalyzer) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == StateReady
}

// Analyze submits the message and rule-evidence summary to the oracle and
// parses its structured verdict. Any failure, timeout, empty or unparsable
// response yields (nil, false) — "escalation unavailable", never an error
// and never "message is safe".
func (a *LazyAnalyzer) Analyze(ctx context.Context, text string, evidence core.GenerativeContext) (*core.GenerativeResult, bool) {
	a.mu.Lock()
	client := a.client
	ready := a.state == StateReady
	a.mu.Unlock()
	if !ready || client == nil {
		return nil, false
	}

	prompt := a.buildPrompt(text, evidence)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	response, err := client.Generate(callCtx, prompt)
	if err != nil {
		a.logger.Debug("generative oracle call failed", zap.Error(err))
		return nil, false
	}

	result, ok := parseOracleResponse(response)
	if !ok {
		a.logger.Debug("generative oracle response was unparsable",
			zap.Int("response_length", len(response)))
		return nil, false
	}
	return result, true
}

// Close releases the generative client. The adapter reports itself
// unavailable afterwards; a later Initialize call reloads it.
func (a *LazyAnalyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.client != nil {
		err = a.client.Close()
		a.client = nil
	}
	a.state = StateUninitialized
	a.initErr = nil
	return err
}

// buildPrompt places the rule-evidence summary ahead of the raw message so
// the oracle can weigh prior evidence. The message is truncated to the fixed
// character budget first.
func (a *LazyAnalyzer) buildPrompt(text string, evidence core.GenerativeContext) string {
	truncated := a.textProcessor.ProcessText(text, maxPromptChars)
	return fmt.Sprintf(promptFormat,
		evidence.RuleConfidence,
		joinOrNone(evidence.DetectedKeywords),
		joinOrNone(append(append([]string{}, evidence.RuleReasons...), evidence.URLReasons...)),
		joinOrNone(evidence.URLs),
		joinOrNone(evidence.SuspiciousURLs),
		truncated,
	)
}

// parseOracleResponse locates the single JSON object in the oracle's free
// text (first '{' to last '}') and parses it. Confidence is clamped to
// [0,1]; suspicious parts are capped at 3.
func parseOracleResponse(response string) (*core.GenerativeResult, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var parsed oracleResponse
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, false
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	parts := parsed.SuspiciousParts
	if len(parts) > 3 {
		parts = parts[:3]
	}

	return &core.GenerativeResult{
		IsScam:          parsed.IsScam,
		Confidence:      confidence,
		ScamType:        core.MapScamTypeLabel(parsed.ScamType),
		WarningMessage:  parsed.WarningMessage,
		Reasons:         parsed.Reasons,
		SuspiciousParts: parts,
	}, true
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "없음"
	}
	return strings.Join(items, ", ")
}
