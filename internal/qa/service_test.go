package qa

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juander/eihub-rag/internal/appstate"
	"github.com/juander/eihub-rag/internal/backend"
	"github.com/juander/eihub-rag/internal/config"
)

// fakeEngine counts Ask calls and returns a canned response or error.
type fakeEngine struct {
	asks     atomic.Int32
	response backend.Response
	err      error
}

func (f *fakeEngine) DocumentCount() int { return 5 }

func (f *fakeEngine) Ask(ctx context.Context, question string) (backend.Response, error) {
	f.asks.Add(1)
	if f.err != nil {
		return backend.Response{}, f.err
	}
	return f.response, nil
}

func readyState(t *testing.T, engine backend.Engine) *appstate.Manager {
	t.Helper()
	m := appstate.NewManager(func(opts backend.Options) (backend.Engine, error) {
		return engine, nil
	})
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	cfg.Backend.APIKey = "sk-test"
	cfg.Backend.DocumentsDir = filepath.Join(t.TempDir(), "documents")
	m.Initialize(cfg)
	if snap := m.Snapshot(); snap.Status != appstate.StatusReady {
		t.Fatalf("state not ready: %+v", snap)
	}
	return m
}

func failedState(t *testing.T) *appstate.Manager {
	t.Helper()
	m := appstate.NewManager(nil)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	cfg.Backend.APIKey = "" // force a Failed transition
	cfg.Backend.DocumentsDir = filepath.Join(t.TempDir(), "documents")
	m.Initialize(cfg)
	return m
}

func TestAsk_Success(t *testing.T) {
	engine := &fakeEngine{response: backend.Response{
		Answer:      "Answer: 42 Sources: doc.pdf Confidence: high Assumptions (if any): none",
		IsInference: true,
		Confidence:  0.87,
		Sources: []backend.SourceRef{
			{Source: "doc.pdf", Page: backend.PageOf("12")},
		},
	}}
	svc := NewService(readyState(t, engine), time.Second)

	res, err := svc.Ask(context.Background(), "what is the answer?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if res.Sections.Answer != "42" {
		t.Errorf("Sections.Answer = %q, want %q", res.Sections.Answer, "42")
	}
	if res.Sections.Sources != "doc.pdf" {
		t.Errorf("Sections.Sources = %q, want %q", res.Sections.Sources, "doc.pdf")
	}
	if res.ConfidencePercent != 87 {
		t.Errorf("ConfidencePercent = %v, want 87", res.ConfidencePercent)
	}
	if !res.IsInference {
		t.Error("IsInference = false, want true")
	}
	if len(res.Sources) != 1 || res.Sources[0].Source != "doc.pdf" {
		t.Errorf("Sources = %+v, want the backend's structured citation", res.Sources)
	}
	if res.RequestID == "" {
		t.Error("RequestID is empty")
	}
}

// TestAsk_ConfidenceIndependentOfTextSection verifies the numeric score is
// taken from the structured field even when the parsed confidence text
// disagrees or is absent.
func TestAsk_ConfidenceIndependentOfTextSection(t *testing.T) {
	engine := &fakeEngine{response: backend.Response{
		Answer:     "no markers at all in this answer",
		Confidence: 0.87,
	}}
	svc := NewService(readyState(t, engine), time.Second)

	res, err := svc.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if res.Sections.Confidence != "" {
		t.Errorf("Sections.Confidence = %q, want empty", res.Sections.Confidence)
	}
	if res.ConfidencePercent != 87 {
		t.Errorf("ConfidencePercent = %v, want 87", res.ConfidencePercent)
	}
}

// TestAsk_NotReady verifies the backend is never queried while the state
// is not Ready, across all non-ready states.
func TestAsk_NotReady(t *testing.T) {
	engine := &fakeEngine{}

	t.Run("uninitialized", func(t *testing.T) {
		m := appstate.NewManager(func(opts backend.Options) (backend.Engine, error) {
			return engine, nil
		})
		svc := NewService(m, time.Second)

		_, err := svc.Ask(context.Background(), "q")

		var notReady *NotReadyError
		if !errors.As(err, &notReady) {
			t.Fatalf("err = %v, want NotReadyError", err)
		}
		if notReady.Status != appstate.StatusUninitialized {
			t.Errorf("Status = %v, want uninitialized", notReady.Status)
		}
		if engine.asks.Load() != 0 {
			t.Errorf("backend asked %d times, want 0", engine.asks.Load())
		}
	})

	t.Run("failed with detail", func(t *testing.T) {
		svc := NewService(failedState(t), time.Second)

		_, err := svc.Ask(context.Background(), "q")

		var notReady *NotReadyError
		if !errors.As(err, &notReady) {
			t.Fatalf("err = %v, want NotReadyError", err)
		}
		if notReady.Status != appstate.StatusFailed {
			t.Errorf("Status = %v, want failed", notReady.Status)
		}
		if notReady.Detail == "" {
			t.Error("Detail should carry the stored failure reason")
		}
		if engine.asks.Load() != 0 {
			t.Errorf("backend asked %d times, want 0", engine.asks.Load())
		}
	})
}

func TestAsk_BackendError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("model overloaded")}
	svc := NewService(readyState(t, engine), time.Second)

	_, err := svc.Ask(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var notReady *NotReadyError
	if errors.As(err, &notReady) {
		t.Errorf("backend query error must not look like a readiness error: %v", err)
	}
}

// TestAsk_EmptyQuestionPassedThrough verifies no validation happens in
// this layer.
func TestAsk_EmptyQuestionPassedThrough(t *testing.T) {
	engine := &fakeEngine{response: backend.Response{Answer: "x"}}
	svc := NewService(readyState(t, engine), time.Second)

	if _, err := svc.Ask(context.Background(), ""); err != nil {
		t.Fatalf("Ask(\"\") failed: %v", err)
	}
	if engine.asks.Load() != 1 {
		t.Errorf("backend asked %d times, want 1", engine.asks.Load())
	}
}

// slowEngine blocks until its context is done.
type slowEngine struct{}

func (slowEngine) DocumentCount() int { return 0 }

func (slowEngine) Ask(ctx context.Context, question string) (backend.Response, error) {
	<-ctx.Done()
	return backend.Response{}, ctx.Err()
}

func TestAsk_TimeoutBoundsBackendCall(t *testing.T) {
	svc := NewService(readyState(t, slowEngine{}), 20*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Ask(context.Background(), "q")
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want deadline exceeded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Ask did not respect its timeout")
	}
}
