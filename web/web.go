// Package web provides the JSON resolve API.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/apiref/adapters/metrics"
	"github.com/artpar/apiref/app"
	"github.com/artpar/apiref/core/registry"
	"github.com/artpar/apiref/ports"
)

// ResolveRequestBody is the POST /v1/resolve payload.
type ResolveRequestBody struct {
	Text       string            `json:"text,omitempty"`
	Collection string            `json:"collection,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Weak       bool              `json:"weak,omitempty"`
}

// ResolveResponseBody is the resolve result.
type ResolveResponseBody struct {
	Collection string            `json:"collection"`
	Name       string            `json:"name,omitempty"`
	SelfLink   string            `json:"self_link"`
	Params     map[string]string `json:"params"`
}

// CollectionBody describes one collection of the catalog.
type CollectionBody struct {
	ID      string   `json:"id"`
	API     string   `json:"api"`
	Version string   `json:"version"`
	Params  []string `json:"params"`
	Path    string   `json:"path"`
	BaseURL string   `json:"base_url"`
}

// DefaultBody is a persisted parameter default.
type DefaultBody struct {
	API        string `json:"api"`
	Collection string `json:"collection,omitempty"`
	Param      string `json:"param"`
	Value      string `json:"value"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the version endpoint response.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// Handler serves the resolve API over a ResolverService.
type Handler struct {
	service *app.ResolverService
	logger  zerolog.Logger
	metrics *metrics.Collector
	idgen   ports.IDGenerator
	version string
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Service *app.ResolverService
	Logger  zerolog.Logger
	Metrics *metrics.Collector // optional; enables /metrics and HTTP metrics
	IDGen   ports.IDGenerator
	Version string
}

// NewHandler creates the API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		service: deps.Service,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		idgen:   deps.IDGen,
		version: deps.Version,
	}
}

// Router returns the HTTP router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(NewRequestIDMiddleware(h.idgen))
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.Health)
	r.Get("/version", h.Version)
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve", h.Resolve)
		r.Get("/collections", h.Collections)
		r.Get("/defaults", h.ListDefaults)
		r.Put("/defaults", h.SetDefault)
		r.Delete("/defaults", h.DeleteDefault)
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Version reports the build version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: h.version, Service: "apiref"})
}

// Resolve parses and resolves one resource identifier.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if body.Text == "" && body.Collection == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text or collection is required")
		return
	}

	res, err := h.service.Resolve(app.ResolveRequest{
		Text:       body.Text,
		Collection: body.Collection,
		Params:     body.Params,
		Weak:       body.Weak,
	})
	if err != nil {
		h.writeResolveError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponseBody{
		Collection: res.Collection,
		Name:       res.Name,
		SelfLink:   res.SelfLink,
		Params:     res.Params,
	})
}

// Collections lists the catalog's collections at default versions.
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.service.Collections()
	if err != nil {
		h.writeInternalError(w, r, err)
		return
	}

	out := make([]CollectionBody, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, CollectionBody{
			ID:      s.ID(),
			API:     s.API,
			Version: s.Version,
			Params:  s.OrderedParams,
			Path:    s.Path,
			BaseURL: s.BaseURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListDefaults lists persisted parameter defaults.
func (h *Handler) ListDefaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.service.Defaults(r.Context())
	if err != nil {
		h.writeInternalError(w, r, err)
		return
	}

	out := make([]DefaultBody, 0, len(defaults))
	for _, d := range defaults {
		out = append(out, DefaultBody{API: d.API, Collection: d.Collection, Param: d.Param, Value: d.Value})
	}
	writeJSON(w, http.StatusOK, out)
}

// SetDefault stores a parameter default and applies it immediately.
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	var body DefaultBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if body.API == "" || body.Param == "" || body.Value == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "api, param and value are required")
		return
	}

	err := h.service.SetDefault(r.Context(), ports.ParamDefault{
		API:        body.API,
		Collection: body.Collection,
		Param:      body.Param,
		Value:      body.Value,
	})
	if err != nil {
		h.writeResolveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// DeleteDefault removes a persisted default.
func (h *Handler) DeleteDefault(w http.ResponseWriter, r *http.Request) {
	api := r.URL.Query().Get("api")
	param := r.URL.Query().Get("param")
	if api == "" || param == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "api and param query parameters are required")
		return
	}

	err := h.service.DeleteDefault(r.Context(), api, r.URL.Query().Get("collection"), param)
	if err != nil {
		h.writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeResolveError maps resolution failures onto status codes. A user
// error carries its message verbatim; anything else is masked.
func (h *Handler) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	if registry.IsUserError(err) {
		writeError(w, http.StatusUnprocessableEntity, userErrorCode(err), err.Error())
		return
	}
	h.writeInternalError(w, r, err)
}

func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", RequestIDFromContext(r.Context())).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func userErrorCode(err error) string {
	var (
		unknownCollection *registry.UnknownCollectionError
		wrongCollection   *registry.WrongCollectionError
		fieldCount        *registry.FieldCountError
		invalidResource   *registry.InvalidResourceError
		invalidEndpoint   *registry.InvalidEndpointError
	)
	switch {
	case errors.As(err, &unknownCollection):
		return "unknown_collection"
	case errors.As(err, &wrongCollection):
		return "wrong_collection"
	case errors.As(err, &fieldCount):
		return "wrong_field_count"
	case errors.As(err, &invalidResource):
		return "invalid_resource"
	case errors.As(err, &invalidEndpoint):
		return "invalid_endpoint"
	default:
		return "unresolved_field"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponseBody{Error: ErrorDetail{Code: code, Message: message}})
}
