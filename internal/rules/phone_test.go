package rules

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/adapters/cache"
	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

type fakeReputationSource struct {
	mu      sync.Mutex
	calls   map[string]int
	reports map[string]*core.ReputationReport
	err     error
	delay   time.Duration
}

func newFakeSource() *fakeReputationSource {
	return &fakeReputationSource{
		calls:   make(map[string]int),
		reports: make(map[string]*core.ReputationReport),
	}
}

func (s *fakeReputationSource) Lookup(ctx context.Context, identifier string, maxResults int) (*core.ReputationReport, error) {
	s.mu.Lock()
	s.calls[identifier]++
	report, ok := s.reports[identifier]
	err := s.err
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return &core.ReputationReport{Identifier: identifier}, nil
	}
	return report, nil
}

func (s *fakeReputationSource) callCount(identifier string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[identifier]
}

func newPhoneAnalyzer(t *testing.T, source core.ReputationSource, ttl time.Duration) (*PhoneReputationAnalyzer, *cache.MemoryCache) {
	t.Helper()
	memCache := cache.NewMemoryCache(100, zap.NewNop(), 0)
	analyzer := NewPhoneReputationAnalyzer(memCache, source, zap.NewNop(), ttl, time.Second)
	return analyzer, memCache
}

func TestPhoneReputationAnalyzer_NoNumbers(t *testing.T) {
	analyzer, _ := newPhoneAnalyzer(t, newFakeSource(), 15*time.Minute)

	evidence := analyzer.Analyze(context.Background(), "번호 없는 메시지")

	assert.Empty(t, evidence.Numbers)
	assert.Equal(t, 0.0, evidence.RiskScore)
	assert.False(t, evidence.HasScamPhones)
}

func TestPhoneReputationAnalyzer_Normalization(t *testing.T) {
	analyzer, _ := newPhoneAnalyzer(t, newFakeSource(), 15*time.Minute)

	evidence := analyzer.Analyze(context.Background(), "010-1234-5678 또는 010 1234 5678로 연락주세요")

	// Both spellings normalize to the same identifier.
	assert.Equal(t, []string{"01012345678"}, evidence.Numbers)
}

func TestPhoneReputationAnalyzer_ReportedNumber(t *testing.T) {
	source := newFakeSource()
	source.reports["01012345678"] = &core.ReputationReport{
		Identifier:    "01012345678",
		TotalReports:  12,
		VoicePhishing: 7,
	}
	analyzer, _ := newPhoneAnalyzer(t, source, 15*time.Minute)

	evidence := analyzer.Analyze(context.Background(), "문의: 010-1234-5678")

	assert.True(t, evidence.HasScamPhones)
	assert.True(t, evidence.HasReportHistory)
	assert.Equal(t, 12, evidence.TotalReports)
	assert.InDelta(t, 0.9, evidence.RiskScore, 1e-9)
	assert.NotEmpty(t, evidence.Reasons)
}

func TestPhoneReputationAnalyzer_SecondLookupHitsCache(t *testing.T) {
	source := newFakeSource()
	source.reports["01012345678"] = &core.ReputationReport{Identifier: "01012345678", TotalReports: 3}
	analyzer, _ := newPhoneAnalyzer(t, source, 15*time.Minute)

	first := analyzer.Analyze(context.Background(), "010-1234-5678")
	second := analyzer.Analyze(context.Background(), "010-1234-5678")

	assert.Equal(t, 1, source.callCount("01012345678"))
	assert.Equal(t, first.TotalReports, second.TotalReports)
	assert.Equal(t, first.RiskScore, second.RiskScore)
}

func TestPhoneReputationAnalyzer_ExpiredEntryRefetches(t *testing.T) {
	source := newFakeSource()
	source.reports["01012345678"] = &core.ReputationReport{Identifier: "01012345678", TotalReports: 3}
	analyzer, _ := newPhoneAnalyzer(t, source, 20*time.Millisecond)

	analyzer.Analyze(context.Background(), "010-1234-5678")
	time.Sleep(40 * time.Millisecond)
	analyzer.Analyze(context.Background(), "010-1234-5678")

	assert.Equal(t, 2, source.callCount("01012345678"))
}

func TestPhoneReputationAnalyzer_ConcurrentLookupsCoalesce(t *testing.T) {
	source := newFakeSource()
	source.delay = 50 * time.Millisecond
	source.reports["01012345678"] = &core.ReputationReport{Identifier: "01012345678", TotalReports: 6}
	analyzer, _ := newPhoneAnalyzer(t, source, 15*time.Minute)

	var wg sync.WaitGroup
	results := make([]core.PhoneEvidence, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = analyzer.Analyze(context.Background(), "010-1234-5678")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, source.callCount("01012345678"))
	for _, evidence := range results {
		assert.True(t, evidence.HasScamPhones)
		assert.InDelta(t, 0.85, evidence.RiskScore, 1e-9)
	}
}

func TestPhoneReputationAnalyzer_LookupFailureIsFailSafe(t *testing.T) {
	source := newFakeSource()
	source.err = errors.New("reputation service unreachable")
	analyzer, _ := newPhoneAnalyzer(t, source, 15*time.Minute)

	evidence := analyzer.Analyze(context.Background(), "010-1234-5678")

	require.Equal(t, []string{"01012345678"}, evidence.Numbers)
	assert.False(t, evidence.HasScamPhones)
	assert.Equal(t, 0.0, evidence.RiskScore)
}

func TestPhoneReputationAnalyzer_SuspiciousPrefix(t *testing.T) {
	analyzer, _ := newPhoneAnalyzer(t, newFakeSource(), 15*time.Minute)

	evidence := analyzer.Analyze(context.Background(), "070-1234-5678로 전화주세요")

	assert.False(t, evidence.HasScamPhones)
	assert.InDelta(t, 0.3, evidence.RiskScore, 1e-9)
	assert.Contains(t, evidence.Reasons[0], "의심 번호 대역")
}

func TestPhoneReputationAnalyzer_AccountNumber(t *testing.T) {
	source := newFakeSource()
	source.reports["35602040812311"] = &core.ReputationReport{
		Identifier:   "35602040812311",
		TotalReports: 2,
		SMSPhishing:  1,
	}
	analyzer, _ := newPhoneAnalyzer(t, source, 15*time.Minute)

	evidence := analyzer.Analyze(context.Background(), "농협 356-0204-0812-311 입금 바랍니다")

	assert.True(t, evidence.HasScamPhones)
	assert.InDelta(t, 0.8, evidence.RiskScore, 1e-9)
}
