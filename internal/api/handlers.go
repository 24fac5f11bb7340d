// Package api is the HTTP and MCP surface of the front-end: the search
// page, the question endpoint, and readiness/inventory introspection.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/juander/eihub-rag/internal/appstate"
	"github.com/juander/eihub-rag/internal/docs"
	"github.com/juander/eihub-rag/internal/qa"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds the handler dependencies.
type Deps struct {
	State        *appstate.Manager
	QA           *qa.Service
	DocumentsDir string
	// RepoBaseURL is where source citations link to.
	RepoBaseURL string
}

// NewHandler returns the front-end HTTP handler.
func NewHandler(deps Deps) http.Handler {
	renderer := newRenderer(deps.RepoBaseURL)

	r := chi.NewRouter()
	r.Get("/", handleHome(deps, renderer))
	r.Post("/ask", handleAsk(deps, renderer))
	r.Get("/health", handleHealth)
	r.Get("/status", handleStatus(deps))
	r.Get("/documents", handleDocuments(deps))

	return r
}

func handleHome(deps Deps, renderer *renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.home(w, deps.State.Snapshot())
	}
}

type askRequest struct {
	Question string `json:"question"`
}

func handleAsk(deps Deps, renderer *renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		wantJSON := strings.Contains(r.Header.Get("Content-Type"), "application/json")

		var question string
		if wantJSON {
			var req askRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
				return
			}
			question = req.Question
		} else {
			if err := r.ParseForm(); err != nil {
				renderer.errorFragment(w, fmt.Sprintf("invalid form: %v", err))
				return
			}
			question = r.PostFormValue("question")
		}

		result, err := deps.QA.Ask(r.Context(), question)
		if err != nil {
			var notReady *qa.NotReadyError
			switch {
			case errors.As(err, &notReady) && wantJSON:
				httpError(w, http.StatusServiceUnavailable, "not_ready", "%v", notReady)
			case errors.As(err, &notReady):
				renderer.errorFragment(w, notReady.Error())
			case wantJSON:
				httpError(w, http.StatusBadGateway, "api_error", "%v", err)
			default:
				renderer.errorFragment(w, err.Error())
			}
			return
		}

		if wantJSON {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(result)
			return
		}
		renderer.result(w, result)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statusPayload(deps.State.Snapshot()))
	}
}

func statusPayload(snap appstate.Snapshot) map[string]any {
	return map[string]any{
		"status":         snap.Status.String(),
		"error_detail":   snap.ErrorDetail,
		"document_count": snap.DocumentCount,
	}
}

func handleDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := docs.Scan(r.Context(), deps.DocumentsDir)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing documents: %v", err)
			return
		}
		if infos == nil {
			infos = []docs.Info{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(infos)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	slog.Debug("request error", "status", code, "type", errType, "message", msg)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
