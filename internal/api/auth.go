package api

import (
	"net/http"
	"net/url"

	"github.com/kidandcat/fridge/internal/apperr"
	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/mail"
)

type credentials struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required"`
	Data     map[string]any `json:"data"`
}

func (s *server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Validator.Validate(req); err != nil {
		s.writeError(w, err)
		return
	}

	u, sess, err := s.Auth.SignUp(req.Email, req.Password, req.Data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess != nil {
		writeJSON(w, http.StatusOK, sess)
		return
	}

	token, err := s.Auth.ConfirmationToken(u.ID, u.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	link := s.Config.BaseURL + "/auth/v1/verify?token=" + url.QueryEscape(token)
	if err := s.Mailer.Send(r.Context(), mail.ConfirmSignup(u.Email, link)); err != nil {
		s.Log.Error("error sending confirmation email", "user_id", u.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *server) handleToken(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("grant_type") {
	case "password":
		if !s.Limiter.Allow(clientIP(r)) {
			s.writeError(w, apperr.ErrRateLimited)
			return
		}
		var req credentials
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.Validator.Validate(req); err != nil {
			s.writeError(w, err)
			return
		}
		sess, err := s.Auth.SignIn(req.Email, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)

	case "refresh_token":
		var req struct {
			RefreshToken string `json:"refresh_token" validate:"required"`
		}
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.Validator.Validate(req); err != nil {
			s.writeError(w, err)
			return
		}
		sess, err := s.Auth.Refresh(req.RefreshToken)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)

	default:
		s.writeError(w, apperr.BadRequest("unsupported grant_type"))
	}
}

func (s *server) handleUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.Auth.User(auth.CurrentUser(r).Subject)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(auth.CurrentUser(r).Subject); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVerify is the target of the confirmation email link.
func (s *server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.writeError(w, apperr.BadRequest("token required"))
		return
	}
	if err := s.Auth.Confirm(token); err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, s.Config.BaseURL+"/", http.StatusSeeOther)
}
