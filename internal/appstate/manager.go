// Package appstate tracks process-wide readiness of the document QA
// backend. The backend handle is constructed at most once per process;
// every request handler reads the outcome through a snapshot.
package appstate

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/juander/eihub-rag/internal/backend"
	"github.com/juander/eihub-rag/internal/config"
)

// Status is the lifecycle state of the backend handle.
type Status int

const (
	StatusUninitialized Status = iota
	StatusInitializing
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitializing:
		return "initializing"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Snapshot is a consistent view of the current readiness state.
type Snapshot struct {
	Status        Status
	ErrorDetail   string
	DocumentCount int
}

// ConstructFunc builds a backend handle. Injected so tests can count
// construction attempts and substitute fakes.
type ConstructFunc func(opts backend.Options) (backend.Engine, error)

// Manager owns the backend handle and its lifecycle. Construct one per
// process and share it by reference.
type Manager struct {
	construct ConstructFunc

	// initMu serializes the whole initialize sequence; mu guards only the
	// published fields so Snapshot never waits on a construction in flight.
	initMu sync.Mutex
	mu     sync.Mutex

	status      Status
	errorDetail string
	docCount    int
	engine      backend.Engine
}

// NewManager returns a Manager in the Uninitialized state. A nil construct
// uses the real HTTP backend client.
func NewManager(construct ConstructFunc) *Manager {
	if construct == nil {
		construct = func(opts backend.Options) (backend.Engine, error) {
			return backend.New(opts)
		}
	}
	return &Manager{construct: construct}
}

// Initialize constructs the backend handle exactly once. Re-invocation
// after the first attempt settles (Ready or Failed) is a no-op, not a
// retry; a concurrent caller blocks until the first attempt settles and
// then no-ops. Failures are recorded in state, never returned: the
// startup path must not crash the process.
func (m *Manager) Initialize(cfg config.Config) {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.currentStatus() != StatusUninitialized {
		slog.Info("backend already initialized, skipping", "status", m.currentStatus().String())
		return
	}
	m.setStatus(StatusInitializing)

	slog.Info("starting backend initialization", "documents_dir", cfg.Backend.DocumentsDir)

	if cfg.Backend.APIKey == "" {
		m.fail("missing API credential: set EIHUB_API_KEY (or OPENAI_API_KEY)")
		return
	}

	if err := os.MkdirAll(cfg.Backend.DocumentsDir, 0o755); err != nil {
		m.fail(fmt.Sprintf("creating documents directory: %v", err))
		return
	}

	// The front-end never triggers reindexing.
	engine, err := m.construct(backend.Options{
		BaseURL:       cfg.Backend.BaseURL,
		APIKey:        cfg.Backend.APIKey,
		DocumentsDir:  cfg.Backend.DocumentsDir,
		ResetIndex:    false,
		EnableWatcher: false,
	})
	if err != nil {
		m.fail(err.Error())
		return
	}

	m.mu.Lock()
	m.engine = engine
	m.docCount = engine.DocumentCount()
	m.status = StatusReady
	m.mu.Unlock()

	slog.Info("backend initialization complete", "document_count", engine.DocumentCount())
}

// Snapshot returns the current state without waiting on any construction
// in flight.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Status:        m.status,
		ErrorDetail:   m.errorDetail,
		DocumentCount: m.docCount,
	}
}

// Engine returns the backend handle; ok is true only when the state is
// Ready. The handle is never reassigned after initialization.
func (m *Manager) Engine() (backend.Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine, m.status == StatusReady
}

func (m *Manager) currentStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// fail records a terminal initialization failure. Recovery requires a
// process restart with the underlying cause fixed.
func (m *Manager) fail(detail string) {
	m.mu.Lock()
	m.status = StatusFailed
	m.errorDetail = detail
	m.mu.Unlock()
	slog.Error("backend initialization failed", "error", detail)
}
