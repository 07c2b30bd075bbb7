package routes

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/devfolio/portfolio/internal/email"
	"github.com/devfolio/portfolio/internal/inbox"
)

const maxContactBody = 64 << 10

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	var in email.ContactMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	in = in.Normalize()
	if ferrs := in.Validate(); len(ferrs) > 0 {
		msgs := make([]string, len(ferrs))
		for i, fe := range ferrs {
			msgs[i] = fe.Message
		}
		title := "Missing required fields"
		if ferrs[0].Field == "email" && in.Email != "" {
			title = "Invalid email format"
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: title, Details: strings.Join(msgs, "; "), Fields: ferrs})
		return
	}

	var archived *inbox.Entry
	if s.Inbox != nil {
		e, err := s.Inbox.Save(r.Context(), in, remoteIP(r))
		if err != nil {
			logger.Warn().Err(err).Msg("archive contact message")
		} else {
			archived = &e
		}
	}

	msg, err := s.Contact.Render(in)
	if err == nil {
		err = s.Email.Send(msg)
	}
	s.markArchived(r, archived, err)

	switch {
	case errors.Is(err, email.ErrNotConfigured):
		logger.Error().Msg("contact relay has no SMTP password")
		writeError(w, http.StatusInternalServerError, "SMTP configuration error", "SMTP_PASSWORD environment variable is not set")
		return
	case err != nil:
		logger.Error().Err(err).Msg("send contact message")
		writeError(w, http.StatusInternalServerError, "Failed to send email", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Email sent successfully"})
}

func (s *Server) markArchived(r *http.Request, e *inbox.Entry, sendErr error) {
	if e == nil {
		return
	}
	status := inbox.StatusSent
	if sendErr != nil {
		status = inbox.StatusFailed
	}
	if err := s.Inbox.MarkStatus(r.Context(), e.ID, status); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("id", e.ID.String()).Msg("update contact message status")
	}
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
