package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
)

// AdminHandler handles the authenticated moderation surface. Every method
// except Login runs behind auth.RequireAdmin.
type AdminHandler struct {
	moderation service.ModerationService
	authSvc    service.AuthService
	notifier   notify.Notifier
}

// NewAdminHandler creates an AdminHandler with the given collaborators.
func NewAdminHandler(moderation service.ModerationService, authSvc service.AuthService, notifier notify.Notifier) *AdminHandler {
	return &AdminHandler{moderation: moderation, authSvc: authSvc, notifier: notifier}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
	} `json:"user"`
}

// Login handles POST /api/admin/login. The failure message never reveals
// whether the username or the password was wrong.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fail(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		fail(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	data := loginData{Token: token}
	data.User.Username = req.Username
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Verify handles GET /api/admin/verify. RequireAdmin already validated the
// token; this just echoes the identity so the admin UI can check a stored
// token on load.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.AdminFromContext(r.Context())
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    map[string]string{"username": username},
	})
}

// ListMessages handles GET /api/admin/messages?page=&limit=&status=.
func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)
	status := r.URL.Query().Get("status")

	messages, pagination, err := h.moderation.List(r.Context(), page, limit, status)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Error fetching messages")
		return
	}

	// Return [] not null for empty pages
	if messages == nil {
		messages = []*model.Message{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: messages, Pagination: &pagination})
}

// GetMessage handles GET /api/admin/messages/{id}.
func (h *AdminHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.moderation.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(w, http.StatusNotFound, "Message not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Error fetching message")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: msg})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/admin/messages/{id}/status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Status == "" {
		fail(w, http.StatusBadRequest, "Status is required")
		return
	}

	msg, err := h.moderation.SetStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			fail(w, http.StatusBadRequest, "Invalid status value")
		case errors.Is(err, repository.ErrNotFound):
			fail(w, http.StatusNotFound, "Message not found")
		default:
			fail(w, http.StatusInternalServerError, "Error updating message status")
		}
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: msg})
}

// DeleteMessage handles DELETE /api/admin/messages/{id}.
func (h *AdminHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.moderation.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(w, http.StatusNotFound, "Message not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Error deleting message")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Message deleted successfully"})
}

type replyRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Reply handles POST /api/admin/messages/{id}/reply. The send is synchronous:
// the admin asked for it explicitly and needs to see a failure immediately,
// unlike intake's background notification. On success the message moves to
// replied automatically.
func (h *AdminHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		fail(w, http.StatusBadRequest, "Subject and message are required")
		return
	}

	msg, err := h.moderation.Reply(r.Context(), r.PathValue("id"), req.Subject, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReplyNotMarked):
			// The email went out; only the stored status is stale. Don't report
			// a failure that would prompt the admin to send again.
			writeJSON(w, http.StatusOK, envelope{
				Success: true,
				Message: "Email sent, but the message could not be marked as replied",
				Data:    msg,
			})
		case errors.Is(err, repository.ErrNotFound):
			fail(w, http.StatusNotFound, "Message not found")
		default:
			fail(w, http.StatusBadGateway, "Failed to send email")
		}
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Email sent successfully", Data: msg})
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendEmail handles POST /api/admin/send-email: a free-form operator send
// that is not tied to a stored message. The admin UI pairs it with a
// separate status update when replying from the message list.
func (h *AdminHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.To == "" || req.Subject == "" || req.Message == "" {
		fail(w, http.StatusBadRequest, "To, subject, and message are required")
		return
	}
	if !emailPattern.MatchString(req.To) {
		fail(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}

	if err := h.notifier.Send(r.Context(), notify.ReplyEnvelope(req.To, req.Subject, req.Message)); err != nil {
		fail(w, http.StatusBadGateway, "Failed to send email")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Email sent successfully"})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.moderation.Stats(r.Context())
	if err != nil {
		fail(w, http.StatusInternalServerError, "Error fetching stats")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: stats})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
