package handlers

import (
	"log/slog"
	"net/http"

	"board/internal/api"
)

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req api.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		user, err := s.Service.RegisterUser(r.Context(), req.Username, req.Email, req.Password, req.Nickname)
		if err != nil {
			s.writeError(w, err)
			return
		}

		slog.Info("User registered", "userId", user.ID, "username", user.Username)
		s.writeJSON(w, http.StatusCreated, user)
	}
}

// HandleUserLogin checks credentials and issues a signed token
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req api.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		user, err := s.Service.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		token, expiresAt, err := s.Auth.Tokens.GenerateToken(user.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, api.LoginResponse{
			Success:   true,
			Token:     token,
			ExpiresAt: expiresAt,
			User:      user,
		})
	}
}

// HandleUserProfile returns a profile by username (GET) or updates the caller's own (PUT)
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			username := r.URL.Query().Get("username")
			if username == "" {
				if user := actingUser(r); user != nil {
					username = user.Username
				}
			}
			profile, err := s.Service.GetProfile(r.Context(), username)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, profile)

		case http.MethodPut:
			var req api.UpdateProfileRequest
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			user, err := s.Service.UpdateProfile(r.Context(), actingUser(r), req.Nickname, req.Email)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, user)

		default:
			methodNotAllowed(w)
		}
	}
}
