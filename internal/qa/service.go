// Package qa orchestrates a single question/answer cycle: readiness gate,
// backend delegation, and section extraction into a render-ready result.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/juander/eihub-rag/internal/appstate"
	"github.com/juander/eihub-rag/internal/backend"
	"github.com/juander/eihub-rag/internal/sections"
)

const defaultAskTimeout = 60 * time.Second

// Result is the structured outcome of one answered question.
type Result struct {
	RequestID string `json:"request_id"`
	// Sections parsed from the answer text.
	Sections sections.Sections `json:"sections"`
	// ConfidencePercent comes from the backend's numeric confidence field
	// (0..1 scaled to 0..100), not from the parsed confidence section.
	ConfidencePercent float64             `json:"confidence_percent"`
	IsInference       bool                `json:"is_inference"`
	Sources           []backend.SourceRef `json:"sources"`
}

// NotReadyError reports that the backend is not available for questions,
// with the stored failure detail when there is one.
type NotReadyError struct {
	Status appstate.Status
	Detail string
}

func (e *NotReadyError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("system not ready: status %s", e.Status)
	}
	return fmt.Sprintf("system not ready: status %s: %s", e.Status, e.Detail)
}

// Service answers questions against the shared process state.
type Service struct {
	state      *appstate.Manager
	askTimeout time.Duration
}

// NewService creates a Service. askTimeout bounds each backend call; zero
// or negative values fall back to the default.
func NewService(state *appstate.Manager, askTimeout time.Duration) *Service {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}
	return &Service{state: state, askTimeout: askTimeout}
}

// Ask answers one question. When the backend is not Ready it returns a
// NotReadyError without touching the backend. Backend errors are logged
// and returned for the transport layer to convert into an error payload.
// The question is passed through unchanged, empty string included;
// validation is the backend's responsibility.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	requestID := uuid.New().String()

	snap := s.state.Snapshot()
	if snap.Status != appstate.StatusReady {
		return Result{}, &NotReadyError{Status: snap.Status, Detail: snap.ErrorDetail}
	}

	engine, ok := s.state.Engine()
	if !ok {
		// Snapshot said Ready but the handle is gone: state invariant broken.
		return Result{}, &NotReadyError{Status: snap.Status}
	}

	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()

	started := time.Now()
	resp, err := engine.Ask(ctx, question)
	if err != nil {
		slog.Error("backend question failed", "request_id", requestID, "error", err)
		return Result{}, fmt.Errorf("processing question: %w", err)
	}

	parsed := sections.Extract(resp.Answer)

	slog.Info("question answered",
		"request_id", requestID,
		"confidence", resp.Confidence,
		"sources", len(resp.Sources),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return Result{
		RequestID:         requestID,
		Sections:          parsed,
		ConfidencePercent: resp.Confidence * 100,
		IsInference:       resp.IsInference,
		Sources:           resp.Sources,
	}, nil
}
