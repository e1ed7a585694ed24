package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/stats"
)

type Handler struct {
	db     *index.DB
	parser parse.Parser
}

func New(db *index.DB, parser parse.Parser) *Handler {
	return &Handler{db: db, parser: parser}
}

// RegisterRoutes registers the API routes on r. Export keys contain slashes
// and must be sent path-escaped.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/exports", h.handleListExports)
	r.Get("/exports/{key}", h.handleGetExport)
	r.Get("/exports/{key}/messages", h.handleMessages)
	r.Get("/exports/{key}/stats", h.handleStats)
	r.Get("/search", h.handleSearch)
	r.Post("/parse", h.handleParse)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := h.db.ExportCount()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "index unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "exports": n})
}

func (h *Handler) handleListExports(w http.ResponseWriter, r *http.Request) {
	exports, err := h.db.AllExports()
	if err != nil {
		log.Printf("[server] list exports: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}
	if exports == nil {
		exports = []index.ExportRow{}
	}
	respondJSON(w, http.StatusOK, exports)
}

// lookupExport resolves the {key} URL parameter, writing a 404 when the
// export does not exist.
func (h *Handler) lookupExport(w http.ResponseWriter, r *http.Request) (*index.ExportRow, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid export key")
		return nil, false
	}
	export, err := h.db.GetExportByKey(key)
	if err != nil {
		log.Printf("[server] get export %s: %v", key, err)
		respondError(w, http.StatusInternalServerError, "failed to load export")
		return nil, false
	}
	if export == nil {
		respondError(w, http.StatusNotFound, "export not found")
		return nil, false
	}
	return export, true
}

func (h *Handler) handleGetExport(w http.ResponseWriter, r *http.Request) {
	export, ok := h.lookupExport(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, export)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	export, ok := h.lookupExport(w, r)
	if !ok {
		return
	}

	limit, err := intParam(r, "limit", 100)
	if err != nil || limit < 1 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	msgs, err := h.db.GetMessagesPage(export.ExportKey, limit, offset)
	if err != nil {
		log.Printf("[server] messages %s: %v", export.ExportKey, err)
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	records := make([]parse.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, m.Record())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"export_key": export.ExportKey,
		"total":      export.MessageCount,
		"offset":     offset,
		"records":    records,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	export, ok := h.lookupExport(w, r)
	if !ok {
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil || top < 0 {
		respondError(w, http.StatusBadRequest, "top must be a non-negative integer")
		return
	}

	records, err := h.db.LoadRecords(export.ExportKey)
	if err != nil {
		log.Printf("[server] load records %s: %v", export.ExportKey, err)
		respondError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	respondJSON(w, http.StatusOK, stats.Build(records, r.URL.Query().Get("user"), top))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" {
		respondError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	limit, err := intParam(r, "limit", 50)
	if err != nil || limit < 1 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	results, err := search.Search(h.db, search.Options{
		Query:                q.Get("q"),
		Export:               q.Get("export"),
		Sender:               q.Get("sender"),
		Since:                q.Get("since"),
		IncludeNotifications: q.Get("notifications") == "1" || q.Get("notifications") == "true",
		Limit:                limit,
	})
	if err != nil {
		log.Printf("[server] search %q: %v", q.Get("q"), err)
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	respondJSON(w, http.StatusOK, results)
}

// handleParse parses the raw request body as an export without touching the
// index. ?date_order= overrides the configured order.
func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	parser := h.parser
	if v := r.URL.Query().Get("date_order"); v != "" {
		order, err := parse.ParseDateOrder(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		parser.Order = order
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	records, err := parser.ParseBytes(data)
	if errors.Is(err, parse.ErrInvalidEncoding) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
