package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"

	"photo-loader/internal/photos"
	"photo-loader/internal/remote"

	"github.com/go-chi/chi/v5"
)

type stateResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type authorsResponse struct {
	State  string         `json:"state"`
	Photos []photos.Photo `json:"photos"`
}

func (s *Server) getAuthors(w http.ResponseWriter, r *http.Request) {
	render(w, r, s.catalog.Authors(), func(w http.ResponseWriter, list []photos.Photo) {
		writeJSON(w, http.StatusOK, authorsResponse{State: remote.Success.String(), Photos: list})
	})
}

func (s *Server) offloadAuthors(w http.ResponseWriter, _ *http.Request) {
	s.catalog.OffloadAuthors()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getThumbnail(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Thumbnail(chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	render(w, r, res, s.writeImage)
}

func (s *Server) offloadThumbnail(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Thumbnail(chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	res.Offload()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFullSize(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.FullSize(chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	render(w, r, res, s.writeImage)
}

func (s *Server) offloadFullSize(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.FullSize(chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	res.Offload()
	w.WriteHeader(http.StatusNoContent)
}

// render starts a load on first view. A failure stays visible until the
// resource is offloaded, which is how a client asks for a retry.
func render[T any](w http.ResponseWriter, r *http.Request, res *remote.Resource[T], onSuccess func(http.ResponseWriter, T)) {
	if res.State().Status == remote.NotStarted {
		// the load outlives this request
		res.Load(context.WithoutCancel(r.Context()))
	}

	state := res.State()
	switch state.Status {
	case remote.Success:
		onSuccess(w, state.Value)
	case remote.Failure:
		writeJSON(w, http.StatusBadGateway, stateResponse{State: state.Status.String(), Error: state.Err.Error()})
	default:
		writeJSON(w, http.StatusAccepted, stateResponse{State: state.Status.String()})
	}
}

func (s *Server) writeImage(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)

	if err := png.Encode(w, img); err != nil {
		s.logger.Warnw("failed to encode image", "err", err)
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, photos.ErrAuthorsNotLoaded):
		status = http.StatusConflict
	case errors.Is(err, photos.ErrUnknownPhoto):
		status = http.StatusNotFound
	case errors.Is(err, photos.ErrMalformedDownloadURL):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, stateResponse{State: "unavailable", Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
