package adapthttp

import (
	"net/http"

	"musify/internal/domain"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	accounts, err := s.svc.Accounts.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(accounts, toAccountResponse))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	account, err := s.svc.Accounts.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(*account))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req credentialsRequest
	if err := s.decode(w, r, schemaCredentials, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	account, err := s.svc.Accounts.Update(r.Context(), p, id, req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(*account))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Accounts.Delete(r.Context(), p, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
