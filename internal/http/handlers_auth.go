package http

import (
	"net/http"
	"strings"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/core"
)

type registerRequest struct {
	Email           string        `json:"email"`
	Name            string        `json:"name"`
	Password        string        `json:"password"`
	DefaultCurrency core.Currency `json:"defaultCurrency"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token,omitempty"`
	User  *core.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	u, err := s.auth.Register(r.Context(), req.Email, req.Name, req.Password, req.DefaultCurrency)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, authResponse{User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	token, u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, authResponse{Token: token, User: u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	u, err := s.auth.User(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, authResponse{User: u})
}
