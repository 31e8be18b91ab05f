package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// HTTPSource queries the external phone/account reputation API. Transport
// details (retries, sessions, cookies) are the API's concern; this adapter
// only consumes the parsed counts.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// lookupResponse mirrors the reputation API's JSON payload.
type lookupResponse struct {
	Identifier      string `json:"identifier"`
	TotalReports    int    `json:"total_reports"`
	VoicePhishing   int    `json:"voice_phishing_reports"`
	SMSPhishing     int    `json:"sms_phishing_reports"`
	ReportingPeriod string `json:"reporting_period,omitempty"`
}

// NewHTTPSource creates a reputation source backed by the external API.
func NewHTTPSource(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Lookup fetches the report counts for one normalized identifier.
func (s *HTTPSource) Lookup(ctx context.Context, identifier string, maxResults int) (*core.ReputationReport, error) {
	endpoint := fmt.Sprintf("%s/v1/reports?identifier=%s&max_results=%s",
		s.baseURL, url.QueryEscape(identifier), strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build reputation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reputation lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reputation source returned status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode reputation response: %w", err)
	}

	return &core.ReputationReport{
		Identifier:      identifier,
		TotalReports:    payload.TotalReports,
		VoicePhishing:   payload.VoicePhishing,
		SMSPhishing:     payload.SMSPhishing,
		ReportingPeriod: payload.ReportingPeriod,
	}, nil
}
