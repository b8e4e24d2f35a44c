package adapthttp

import (
	"net/http"

	"musify/internal/app"
	"musify/internal/domain"
)

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req playlistCreateRequest
	if err := s.decode(w, r, schemaPlaylistCreate, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	pl, err := s.svc.Playlists.Create(r.Context(), p, req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlaylistResponse(*pl))
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	playlists, err := s.svc.Playlists.List(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(playlists, toPlaylistResponse))
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pl, err := s.svc.Playlists.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaylistResponse(*pl))
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req playlistUpdateRequest
	if err := s.decode(w, r, schemaPlaylistUpdate, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	pl, err := s.svc.Playlists.Update(r.Context(), p, id, app.PlaylistUpdate{Title: req.Title, ImagePath: req.ImagePath})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaylistResponse(*pl))
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Playlists.Delete(r.Context(), p, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlaylistTracks(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	entries, err := s.svc.Playlists.ListTracks(r.Context(), id, q.Get("sortBy"), q.Get("direction"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(entries, toPlaylistEntryResponse))
}

func (s *Server) handleAddPlaylistTrack(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req addTrackRequest
	if err := s.decode(w, r, schemaAddTrack, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	pt, err := s.svc.Playlists.AddTrack(r.Context(), p, id, req.TrackID, req.Position)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlistTrackResponse{
		PlaylistID: pt.PlaylistID,
		TrackID:    pt.TrackID,
		AddedAt:    pt.AddedAt,
		Position:   pt.Position,
	})
}

func (s *Server) handleRemovePlaylistTrack(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Playlists.RemoveTrack(r.Context(), p, id, trackID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
