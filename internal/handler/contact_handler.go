package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/service"
)

const maxMessageLength = 5000

// emailPattern is the deliberately simple local@domain.tld shape check.
// Full RFC 5322 parsing accepts addresses no mail provider would deliver to.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactHandler handles the unauthenticated intake surface.
type ContactHandler struct {
	intake service.IntakeService
}

// NewContactHandler creates a ContactHandler with the given intake service.
func NewContactHandler(intake service.IntakeService) *ContactHandler {
	return &ContactHandler{intake: intake}
}

// submitRequest is the expected JSON body for POST /api/contact.
type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// submittedMessage is the redacted projection returned to the sender. The
// moderation fields stay server-side.
type submittedMessage struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// Submit handles POST /api/contact.
// name, email and message are required; subject is optional; message max
// 5000 chars. The response is sent as soon as the message is stored — the
// operator notification happens in the background and its outcome never
// reaches this caller.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	switch {
	case req.Name == "":
		fail(w, http.StatusBadRequest, "name is required")
		return
	case req.Email == "":
		fail(w, http.StatusBadRequest, "email is required")
		return
	case req.Message == "":
		fail(w, http.StatusBadRequest, "message is required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		fail(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}
	if len([]rune(req.Message)) > maxMessageLength {
		fail(w, http.StatusBadRequest, "message is too long")
		return
	}

	msg := &model.Message{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	if err := h.intake.Submit(r.Context(), msg); err != nil {
		fail(w, http.StatusInternalServerError,
			"An error occurred while processing your message. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Thank you, " + msg.Name + "! Your message has been received.",
		Data: submittedMessage{
			ID:        msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Status:    string(msg.Status),
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	})
}

// subscribeRequest is the expected JSON body for POST /api/subscribe.
type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /api/subscribe. Newsletter delivery does not exist
// yet; the endpoint validates the address and acknowledges, matching the
// public site's signup form.
func (h *ContactHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		fail(w, http.StatusBadRequest, "Email is required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		fail(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Thank you for subscribing! You will receive updates soon.",
	})
}
