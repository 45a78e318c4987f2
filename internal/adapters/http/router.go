package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avasilkov/secure-doc-portal/internal/config"
	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
	"github.com/avasilkov/secure-doc-portal/internal/core/ports"
	"github.com/avasilkov/secure-doc-portal/internal/observability/metrics"
)

const serviceName = "api"

// maxUploadBytes bounds document payloads accepted over multipart.
const maxUploadBytes = 64 << 20

type Router struct {
	lifecycle ports.DocumentLifecycle
	metrics   *metrics.HTTPServerMetrics
	cfg       config.Config
}

func NewRouter(cfg config.Config, lifecycle ports.DocumentLifecycle, m *metrics.HTTPServerMetrics) *Router {
	return &Router{
		lifecycle: lifecycle,
		metrics:   m,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("GET /metrics", rt.metrics.Handler())

	mux.HandleFunc("POST /v1/documents", rt.protect(rt.createDocument))
	mux.HandleFunc("GET /v1/documents", rt.protect(rt.listDocuments))
	mux.HandleFunc("GET /v1/documents/{id}", rt.protect(rt.getDocument))
	mux.HandleFunc("POST /v1/documents/{id}/transitions", rt.protect(rt.requestTransition))
	mux.HandleFunc("GET /v1/documents/{id}/history", rt.protect(rt.getHistory))
	mux.HandleFunc("GET /v1/documents/{id}/history/export", rt.protect(rt.exportHistory))
	mux.HandleFunc("GET /v1/documents/{id}/download", rt.protect(rt.downloadDocument))

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := rt.actor(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.lifecycle.Create(r.Context(), ports.CreateDocumentInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Payload:     file,
		Actor:       actor,
	})
	rt.metrics.RecordDocumentCreated(serviceName, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if _, ok := rt.actor(w, r); !ok {
		return
	}
	docs, err := rt.lifecycle.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := rt.actor(w, r); !ok {
		return
	}
	doc, err := rt.lifecycle.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) requestTransition(w http.ResponseWriter, r *http.Request) {
	actor, ok := rt.actor(w, r)
	if !ok {
		return
	}

	var req struct {
		TargetState string `json:"target_state"`
		Comment     string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	target, err := domain.ParseState(strings.TrimSpace(req.TargetState))
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := rt.lifecycle.RequestTransition(r.Context(), r.PathValue("id"), target, actor, req.Comment)
	rt.metrics.RecordTransition(serviceName, target, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := rt.actor(w, r); !ok {
		return
	}
	entries, err := rt.lifecycle.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := rt.actor(w, r); !ok {
		return
	}
	doc, payload, err := rt.lifecycle.OpenPayload(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer payload.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
