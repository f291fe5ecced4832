// Package api provides the JSON handlers for lessons, practice sessions and
// sign templates.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ayusman/signtutor/internal/app"
	"github.com/ayusman/signtutor/internal/practice"
	"github.com/ayusman/signtutor/internal/store"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// maxTemplateSize bounds uploaded landmark CSVs.
const maxTemplateSize = 32 << 20

// Handler serves the JSON API for an App.
type Handler struct {
	app *app.App
	log *zap.SugaredLogger
}

// NewHandler creates a Handler for a.
func NewHandler(a *app.App, log *zap.SugaredLogger) *Handler {
	return &Handler{app: a, log: log.Named("api")}
}

// Register adds the API routes to router. Requests that change the practice
// session or spend points are limited to rateLimit per minute per IP; zero
// disables the limit.
func (h *Handler) Register(router *httprouter.Router, rateLimit int) {
	limited := func(method, route string, handle httprouter.Handle) {
		if rateLimit <= 0 {
			router.Handle(method, route, handle)
			return
		}
		limit := httprate.Limit(rateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
		router.Handle(method, route, func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
			limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handle(w, r, params)
			})).ServeHTTP(w, r)
		})
	}

	router.GET("/api/lessons", h.listLessons)
	router.GET("/api/lessons/:sign", h.getLesson)
	limited(http.MethodPost, "/api/lessons/:sign/unlock", h.unlockLesson)

	router.GET("/api/progress", h.listProgress)
	router.GET("/api/profile", h.getProfile)
	limited(http.MethodPut, "/api/profile", h.updateProfile)
	router.GET("/api/word", h.getWord)
	limited(http.MethodPut, "/api/word", h.setWord)

	router.GET("/api/practice", h.getPractice)
	limited(http.MethodPost, "/api/practice/lesson/:sign", h.startLesson)
	limited(http.MethodPost, "/api/practice/word", h.startWord)
	limited(http.MethodPost, "/api/practice/retry", h.control(h.app.Retry))
	limited(http.MethodPost, "/api/practice/stop", h.control(h.app.Stop))
	limited(http.MethodPost, "/api/practice/pause", h.control(h.app.Pause))
	limited(http.MethodPost, "/api/practice/resume", h.control(h.app.Resume))

	limited(http.MethodPost, "/api/templates", h.importTemplates)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusOf maps application errors to HTTP status codes.
func statusOf(err error) int {
	var setupErr *practice.SetupError
	switch {
	case errors.Is(err, app.ErrNoLetters):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrLocked):
		return http.StatusForbidden
	case errors.Is(err, store.ErrInsufficientPoints), errors.Is(err, app.ErrNoSession):
		return http.StatusConflict
	case errors.As(err, &setupErr):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v)
}
