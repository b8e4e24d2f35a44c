package adapthttp

import (
	"net/http"

	"musify/internal/domain"
)

func (s *Server) handleCreateTrack(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req trackCreateRequest
	if err := s.decode(w, r, schemaTrackCreate, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.svc.Tracks.Create(r.Context(), p, req.Title, req.DurationSeconds, req.ImagePath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTrackResponse(*t))
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	tracks, err := s.svc.Tracks.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(tracks, toTrackResponse))
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.svc.Tracks.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackResponse(*t))
}
