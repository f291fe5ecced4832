package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lessons, err := h.app.Lessons()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) getLesson(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	l, err := h.app.Lesson(params.ByName("sign"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) unlockLesson(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	l, err := h.app.UnlockLesson(params.ByName("sign"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) listProgress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	records, err := h.app.Progress()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := h.app.Profile()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileRequest struct {
	LeftHanded *bool `json:"left_handed"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.LeftHanded == nil {
		writeError(w, http.StatusBadRequest, "left_handed is required")
		return
	}
	p, err := h.app.SetLeftHanded(*req.LeftHanded)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type wordRequest struct {
	Word string `json:"word"`
}

type wordResponse struct {
	Word string `json:"word"`
}

func (h *Handler) getWord(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, wordResponse{Word: h.app.WordOfTheDay()})
}

func (h *Handler) setWord(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req wordRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	word, err := h.app.SetWordOfTheDay(req.Word)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wordResponse{Word: word.Word})
}
