package api

import (
	"net/http"

	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/mail"
)

type friendNoteRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"max=10000"`
}

func (s *server) handleFriendNote(w http.ResponseWriter, r *http.Request) {
	var req friendNoteRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Validator.Validate(req); err != nil {
		s.writeError(w, err)
		return
	}

	sender := auth.CurrentUser(r)
	msg := mail.FriendNote(req.Email, sender.Email, req.Title, req.Content, s.Config.BaseURL+"/")
	if err := s.Mailer.Send(r.Context(), msg); err != nil {
		s.Log.Error("error sending friend note", "user_id", sender.Subject, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"code": "mail_failed", "message": "could not send the note"})
		return
	}
	s.Log.Info("friend note sent", "user_id", sender.Subject)
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}
