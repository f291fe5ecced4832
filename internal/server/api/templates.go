package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type importResponse struct {
	Templates int `json:"templates"`
}

// importTemplates replaces the stored sign templates with ones trained from a
// landmark CSV request body.
func (h *Handler) importTemplates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, err := h.app.ImportTemplates(http.MaxBytesReader(w, r.Body, maxTemplateSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Templates: n})
}
