package server

import (
	"net/http"
	"strconv"

	"github.com/df07/go-bvh-pathtracer/pkg/job"
	"github.com/pkg/errors"
)

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid scene parameters"))
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid x coordinate"))
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid y coordinate"))
		return
	}

	j, err := job.New(cfg, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := j.Inspect(pixelX, pixelY)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
