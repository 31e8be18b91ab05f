package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
	"github.com/scamdetect/hybrid-scam-detector/internal/utils"
)

type fakeClient struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
	closed     bool
}

func (c *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPrompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPrompt
}

func newTestAnalyzer(client core.GenerativeClient, factoryErr error, factoryCalls *int32, factoryDelay time.Duration) *LazyAnalyzer {
	factory := func(ctx context.Context) (core.GenerativeClient, error) {
		if factoryCalls != nil {
			atomic.AddInt32(factoryCalls, 1)
		}
		if factoryDelay > 0 {
			time.Sleep(factoryDelay)
		}
		if factoryErr != nil {
			return nil, factoryErr
		}
		return client, nil
	}
	return NewLazyAnalyzer(factory, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()), time.Second)
}

func TestLazyAnalyzer_NotReadyBeforeInitialize(t *testing.T) {
	var factoryCalls int32
	analyzer := newTestAnalyzer(&fakeClient{}, nil, &factoryCalls, 0)

	assert.False(t, analyzer.Ready())
	assert.Equal(t, int32(0), atomic.LoadInt32(&factoryCalls))

	result, ok := analyzer.Analyze(context.Background(), "테스트", core.GenerativeContext{})
	assert.Nil(t, result)
	assert.False(t, ok)
}

func TestLazyAnalyzer_InitializeIsIdempotent(t *testing.T) {
	var factoryCalls int32
	analyzer := newTestAnalyzer(&fakeClient{}, nil, &factoryCalls, 0)

	require.NoError(t, analyzer.Initialize(context.Background()))
	require.NoError(t, analyzer.Initialize(context.Background()))

	assert.True(t, analyzer.Ready())
	assert.Equal(t, int32(1), atomic.LoadInt32(&factoryCalls))
}

func TestLazyAnalyzer_ConcurrentInitializeSingleFlight(t *testing.T) {
	var factoryCalls int32
	analyzer := newTestAnalyzer(&fakeClient{}, nil, &factoryCalls, 50*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, analyzer.Initialize(context.Background()))
		}()
	}
	wg.Wait()

	assert.True(t, analyzer.Ready())
	assert.Equal(t, int32(1), atomic.LoadInt32(&factoryCalls))
}

func TestLazyAnalyzer_FailedInitializeIsRetryable(t *testing.T) {
	var factoryCalls int32
	loadErr := errors.New("model load failed")
	failing := newTestAnalyzer(nil, loadErr, &factoryCalls, 0)

	err := failing.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, failing.Ready())

	// A later call retries the load instead of staying failed forever.
	err = failing.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&factoryCalls))
}

func TestLazyAnalyzer_AnalyzeParsesOracleJSON(t *testing.T) {
	client := &fakeClient{response: `분석 결과입니다.
{"isScam": true, "confidence": 0.82, "scamType": "voice phishing", "warningMessage": "기관 사칭 주의", "reasons": ["검찰 사칭"], "suspiciousParts": ["검찰청입니다"]}
이상입니다.`}
	analyzer := newTestAnalyzer(client, nil, nil, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	result, ok := analyzer.Analyze(context.Background(), "검찰청입니다", core.GenerativeContext{RuleConfidence: 0.5})

	require.True(t, ok)
	assert.True(t, result.IsScam)
	assert.InDelta(t, 0.82, result.Confidence, 1e-9)
	assert.Equal(t, core.ScamTypeVoicePhishing, result.ScamType)
	assert.Equal(t, "기관 사칭 주의", result.WarningMessage)
	assert.Equal(t, []string{"검찰 사칭"}, result.Reasons)
}

func TestLazyAnalyzer_AnalyzeClampsConfidence(t *testing.T) {
	client := &fakeClient{response: `{"isScam": true, "confidence": 1.7, "scamType": "phishing"}`}
	analyzer := newTestAnalyzer(client, nil, nil, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	result, ok := analyzer.Analyze(context.Background(), "테스트", core.GenerativeContext{})

	require.True(t, ok)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestLazyAnalyzer_AnalyzeCapsSuspiciousParts(t *testing.T) {
	client := &fakeClient{response: `{"isScam": true, "confidence": 0.9, "suspiciousParts": ["a", "b", "c", "d", "e"]}`}
	analyzer := newTestAnalyzer(client, nil, nil, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	result, ok := analyzer.Analyze(context.Background(), "테스트", core.GenerativeContext{})

	require.True(t, ok)
	assert.Len(t, result.SuspiciousParts, 3)
}

func TestLazyAnalyzer_AnalyzeRejectsUnparsableResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json", "사기로 보입니다"},
		{"empty", ""},
		{"broken json", `{"isScam": true,`},
		{"braces out of order", `} 무의미 {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: tt.response}
			analyzer := newTestAnalyzer(client, nil, nil, 0)
			require.NoError(t, analyzer.Initialize(context.Background()))

			result, ok := analyzer.Analyze(context.Background(), "테스트", core.GenerativeContext{})

			assert.Nil(t, result)
			assert.False(t, ok)
		})
	}
}

func TestLazyAnalyzer_AnalyzeGenerateError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	analyzer := newTestAnalyzer(client, nil, nil, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	result, ok := analyzer.Analyze(context.Background(), "테스트", core.GenerativeContext{})

	assert.Nil(t, result)
	assert.False(t, ok)
}

func TestLazyAnalyzer_PromptTruncatesMessage(t *testing.T) {
	client := &fakeClient{response: `{"isScam": false, "confidence": 0.1}`}
	analyzer := newTestAnalyzer(client, nil, nil, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	long := strings.Repeat("가", 1600)
	_, ok := analyzer.Analyze(context.Background(), long, core.GenerativeContext{})
	require.True(t, ok)

	prompt := client.prompt()
	assert.Contains(t, prompt, strings.Repeat("가", 1500))
	assert.NotContains(t, prompt, strings.Repeat("가", 1501))
}

func TestLazyAnalyzer_PromptCarriesRuleEvidence(t *testing.T) {
	client := &fakeClient{response: `{"isScam": false, "confidence": 0.1}`}
	analyzer := newTestAnalyzer(client, nil, nil, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	evidence := core.GenerativeContext{
		RuleConfidence:   0.4,
		DetectedKeywords: []string{"급하게", "송금"},
		RuleReasons:      []string{"위험 키워드 '급하게' 감지 (심각도: 높음)"},
		URLs:             []string{"http://bit.ly/a"},
		SuspiciousURLs:   []string{"http://bit.ly/a"},
	}
	_, ok := analyzer.Analyze(context.Background(), "급하게 송금", evidence)
	require.True(t, ok)

	prompt := client.prompt()
	assert.Contains(t, prompt, "0.40")
	assert.Contains(t, prompt, "급하게, 송금")
	assert.Contains(t, prompt, "http://bit.ly/a")
}

func TestLazyAnalyzer_CloseResetsState(t *testing.T) {
	var factoryCalls int32
	client := &fakeClient{response: `{"isScam": false, "confidence": 0.1}`}
	analyzer := newTestAnalyzer(client, nil, &factoryCalls, 0)
	require.NoError(t, analyzer.Initialize(context.Background()))

	require.NoError(t, analyzer.Close())

	assert.True(t, client.closed)
	assert.False(t, analyzer.Ready())
	_, ok := analyzer.Analyze(context.Background(), "테스트", core.GenerativeContext{})
	assert.False(t, ok)

	// Close is not terminal; a later Initialize reloads the client.
	require.NoError(t, analyzer.Initialize(context.Background()))
	assert.True(t, analyzer.Ready())
	assert.Equal(t, int32(2), atomic.LoadInt32(&factoryCalls))
}
