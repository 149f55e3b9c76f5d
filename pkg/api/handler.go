package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/dict"
)

// maxBody bounds every JSON request body.
const maxBody = 64 * 1024

// NewRouter returns an http.Handler with all portul API routes.
func NewRouter(svc *convert.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{eps: newEndpoints(svc, logger), reg: svc.Registry()}

	mux.HandleFunc("GET /v1/convert/batch", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/convert/batch", h.handleBatch)
	mux.HandleFunc("POST /v1/convert", h.handleConvert)
	mux.HandleFunc("POST /v1/explain", h.handleExplain)
	mux.HandleFunc("GET /v1/dicts", h.handleListDicts)
	mux.HandleFunc("GET /v1/dicts/{id}/lookup/{word}", h.handleLookup)
	mux.HandleFunc("GET /v1/dicts/{id}/complete", h.handleComplete)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return chain(mux, requestID, accessLog(logger), cors)
}

type handler struct {
	eps *endpoints
	reg *dict.Registry
}

// --- convert / explain ---

func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convert.Request
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.eps.convert(r.Context(), &req)
	respond(w, resp, err)
}

func (h *handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req convert.Request
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.eps.explain(r.Context(), &req)
	respond(w, resp, err)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.eps.batch(r.Context(), &req)
	respond(w, resp, err)
}

// --- dictionaries ---

func (h *handler) handleListDicts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.listDicts(r.Context(), nil)
	respond(w, resp, err)
}

func (h *handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	req := &lookupReq{
		Dict:      r.PathValue("id"),
		Word:      r.PathValue("word"),
		Direction: r.URL.Query().Get("direction"),
	}
	if r.URL.Query().Has("pos") {
		pos := dict.POS(r.URL.Query().Get("pos"))
		req.POS = &pos
	}
	resp, err := h.eps.lookup(r.Context(), req)
	respond(w, resp, err)
}

func (h *handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &completeReq{
		Dict:      r.PathValue("id"),
		Prefix:    q.Get("prefix"),
		Direction: q.Get("direction"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = n
	}
	resp, err := h.eps.complete(r.Context(), req)
	respond(w, resp, err)
}

// --- health ---

type healthResponse struct {
	Status       string `json:"status"`
	Dictionaries int    `json:"dictionaries"`
	TotalEntries int    `json:"total_entries"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Dictionaries: h.reg.DictCount(),
		TotalEntries: h.reg.TotalEntries(),
	})
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, convert.ErrUnknownDict):
		return http.StatusNotFound
	case errors.Is(err, dict.ErrBadDirection), errors.Is(err, convert.ErrBatchSize):
		return http.StatusBadRequest
	case errors.Is(err, convert.ErrConversion):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
