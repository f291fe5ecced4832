package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) getPractice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

func (h *Handler) startLesson(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	snap, err := h.app.StartLesson(params.ByName("sign"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// startWord spells the word in the body, or today's word when the body is
// empty or names no word.
func (h *Handler) startWord(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req wordRequest
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	snap, err := h.app.StartWord(req.Word)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// control wraps a session control that takes no arguments.
func (h *Handler) control(fn func() error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := fn(); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Snapshot())
	}
}
