package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/auth"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/storage"
)

type registerRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	CalendarPreference string `json:"calendar_preference"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type userResponse struct {
	User domain.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	_ = parseJSON(r, &req)

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error("hash password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	user, err := s.store.CreateUser(r.Context(), domain.User{
		Name:               name,
		Email:              email,
		PasswordHash:       hash,
		CalendarPreference: domain.NormalizeCalendarPreference(req.CalendarPreference),
	})
	if errors.Is(err, storage.ErrEmailTaken) {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.log.Error("create user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	s.writeAuthResponse(w, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	_ = parseJSON(r, &req)

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.UserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Error("look up user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not log in")
		return
	}
	if err != nil || req.Password == "" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.writeAuthResponse(w, user)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := s.store.UserByID(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.log.Error("load user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not load user")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

type updateUserRequest struct {
	Name               *string `json:"name"`
	CalendarPreference *string `json:"calendar_preference"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := s.store.UserByID(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.log.Error("load user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not load user")
		return
	}

	var req updateUserRequest
	_ = parseJSON(r, &req)

	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			user.Name = name
		}
	}
	if req.CalendarPreference != nil {
		user.CalendarPreference = domain.NormalizeCalendarPreference(*req.CalendarPreference)
	}

	user, err = s.store.UpdateUser(r.Context(), user)
	if err != nil {
		s.log.Error("update user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not update user")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, user domain.User) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error("issue token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
