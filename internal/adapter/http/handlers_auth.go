package adapthttp

import (
	"net/http"

	"musify/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decode(w, r, schemaCredentials, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.svc.Auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decode(w, r, schemaCredentials, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	writeJSON(w, http.StatusOK, meResponse{ID: p.AccountID, Username: p.Username})
}
