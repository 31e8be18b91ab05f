package ingress

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

// HTTPIngress exposes the detector over a small JSON API
type HTTPIngress struct {
	detector *core.HybridDetector
	logger   *zap.Logger
	listen   string
	server   *http.Server
}

// NewHTTPIngress creates a new HTTP ingress
func NewHTTPIngress(detector *core.HybridDetector, logger *zap.Logger, listen string) *HTTPIngress {
	return &HTTPIngress{
		detector: detector,
		logger:   logger,
		listen:   listen,
	}
}

// AnalyzeRequest is the request body for POST /v1/analyze.
type AnalyzeRequest struct {
	Message string `json:"message"`
	// AllowEscalation gates the generative-oracle path. Defaults to true
	// when omitted.
	AllowEscalation *bool `json:"allowEscalation,omitempty"`
}

// AnalyzeResponse is the response body for POST /v1/analyze.
type AnalyzeResponse struct {
	AnalysisID       string   `json:"analysisId"`
	IsScam           bool     `json:"isScam"`
	Confidence       float64  `json:"confidence"`
	ScamType         string   `json:"scamType"`
	DetectionMethod  string   `json:"detectionMethod"`
	Reasons          []string `json:"reasons,omitempty"`
	DetectedKeywords []string `json:"detectedKeywords,omitempty"`
	SuspiciousParts  []string `json:"suspiciousParts,omitempty"`
	WarningMessage   string   `json:"warningMessage,omitempty"`
	AnalyzedAt       string   `json:"analyzedAt"`
}

// Router builds the chi router. Exposed for handler tests.
func (i *HTTPIngress) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/v1/analyze", i.handleAnalyze)
	r.Get("/healthz", i.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start begins serving and blocks until the listener stops
func (i *HTTPIngress) Start(ctx context.Context) error {
	i.server = &http.Server{
		Addr:         i.listen,
		Handler:      i.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	i.logger.Info("Starting HTTP ingress", zap.String("listen", i.listen))
	err := i.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down
func (i *HTTPIngress) Stop() error {
	if i.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return i.server.Shutdown(ctx)
}

func (i *HTTPIngress) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	allowEscalation := true
	if req.AllowEscalation != nil {
		allowEscalation = *req.AllowEscalation
	}

	verdict := i.detector.Analyze(r.Context(), req.Message, allowEscalation)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		AnalysisID:       verdict.AnalysisID,
		IsScam:           verdict.IsScam,
		Confidence:       verdict.Confidence,
		ScamType:         string(verdict.ScamType),
		DetectionMethod:  string(verdict.DetectionMethod),
		Reasons:          verdict.Reasons,
		DetectedKeywords: verdict.DetectedKeywords,
		SuspiciousParts:  verdict.SuspiciousParts,
		WarningMessage:   verdict.WarningMessage,
		AnalyzedAt:       verdict.AnalyzedAt.UTC().Format(time.RFC3339),
	})
}

func (i *HTTPIngress) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already written; nothing left to do but log.
		return
	}
}
