// Package httpadapter exposes the document fill service over HTTP.
package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/docufill/docufill/internal/core/domain"
	"github.com/docufill/docufill/internal/core/ports"
	"github.com/docufill/docufill/internal/core/usecase"
)

type Router struct {
	ingestUC   ports.DocumentIngestor
	dialogueUC ports.DialogueService
	renderUC   ports.DocumentRenderer
	repo       ports.DocumentRepository
	store      ports.PlaceholderStore
	storage    ports.ObjectStorage

	rateLimit *rateLimiter
}

func NewRouter(
	ingestUC ports.DocumentIngestor,
	dialogueUC ports.DialogueService,
	renderUC ports.DocumentRenderer,
	repo ports.DocumentRepository,
	store ports.PlaceholderStore,
	storage ports.ObjectStorage,
) *Router {
	return &Router{
		ingestUC:   ingestUC,
		dialogueUC: dialogueUC,
		renderUC:   renderUC,
		repo:       repo,
		store:      store,
		storage:    storage,
	}
}

// WithRateLimit enables the traffic control middleware. rps <= 0 disables it.
func (rt *Router) WithRateLimit(rps float64, burst int) *Router {
	if rps > 0 {
		rt.rateLimit = newRateLimiter(rps, burst)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("GET /v1/documents/{id}/placeholders", rt.listPlaceholders)
	mux.HandleFunc("GET /v1/documents/{id}/placeholders/export", rt.exportPlaceholders)
	mux.HandleFunc("POST /v1/documents/{id}/chat", rt.chat)
	mux.HandleFunc("POST /v1/documents/{id}/render", rt.render)
	mux.HandleFunc("GET /v1/documents/{id}/download", rt.download)

	var handler http.Handler = mux
	if rt.rateLimit != nil {
		handler = rt.rateLimit.middleware(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	docs, err := rt.repo.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

type documentResponse struct {
	*domain.Document
	Progress domain.Progress `json:"progress"`
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.fetchDocument(w, r)
	if !ok {
		return
	}
	progress, err := rt.store.Progress(r.Context(), doc.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Document: doc, Progress: progress})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) listPlaceholders(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.fetchDocument(w, r)
	if !ok {
		return
	}

	var placeholders []domain.Placeholder
	var err error
	if r.URL.Query().Get("unfilled") == "true" {
		placeholders, err = rt.store.ListUnfilled(r.Context(), doc.ID)
	} else {
		placeholders, err = rt.store.ListByDocument(r.Context(), doc.ID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	progress, err := rt.store.Progress(r.Context(), doc.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"placeholders": placeholders,
		"progress":     progress,
	})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	result, err := rt.dialogueUC.HandleTurn(r.Context(), r.PathValue("id"), req.SessionID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) render(w http.ResponseWriter, r *http.Request) {
	key, err := rt.renderUC.Render(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "rendered",
		"storage_key": key,
	})
}

func (rt *Router) download(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.fetchDocument(w, r)
	if !ok {
		return
	}
	if doc.Status != domain.StatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "document is not rendered yet"})
		return
	}

	key := usecase.OutputKey(doc)
	reader, err := rt.storage.Open(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="completed_document_`+doc.ID+strings.ToLower(ext(doc))+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (rt *Router) fetchDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	id := r.PathValue("id")
	doc, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return doc, true
}

func ext(doc *domain.Document) string {
	if idx := strings.LastIndex(doc.StoragePath, "."); idx >= 0 {
		return doc.StoragePath[idx:]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
