package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"staffchat/internal/usecase"

	"github.com/go-playground/validator/v10"
)

type ChatHandler struct {
	convUc   usecase.ConversationUsecase
	rosterUc usecase.RosterUsecase
	validate *validator.Validate
}

func NewChatHandler(convUc usecase.ConversationUsecase, rosterUc usecase.RosterUsecase) *ChatHandler {
	return &ChatHandler{
		convUc:   convUc,
		rosterUc: rosterUc,
		validate: validator.New(),
	}
}

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// chatErrorStatus maps usecase errors onto HTTP status codes. Anything
// not in the validation or unknown-party class is a storage failure and
// comes back generic.
func chatErrorStatus(err error) (int, string) {
	switch err {
	case usecase.ErrMissingParty, usecase.ErrEmptyContent, usecase.ErrSelfMessage,
		usecase.ErrEmptyMessageIds, usecase.ErrInvalidMode:
		return http.StatusBadRequest, err.Error()
	case usecase.ErrUnknownParty:
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Method Post /chat/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	var req struct {
		ReceiverId int64  `json:"receiverId" validate:"required,gt=0"`
		Content    string `json:"content" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
		return
	}

	view, err := h.convUc.SendMessage(r.Context(), viewer.StaffId, req.ReceiverId, req.Content)
	if err != nil {
		log.Printf("Send message error: %v", err)
		status, message := chatErrorStatus(err)
		writeJSON(w, status, Response{Message: message})
		return
	}

	writeJSON(w, http.StatusCreated, Response{Message: "success", Data: view})
}

// Method Get /chat/conversation?partner_id=
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	partnerId, err := strconv.ParseInt(r.URL.Query().Get("partner_id"), 10, 64)
	if err != nil || partnerId <= 0 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "missing or invalid partner_id param"})
		return
	}

	// Opening the conversation marks the partner's messages read.
	views, err := h.convUc.GetConversation(r.Context(), viewer.StaffId, partnerId, true)
	if err != nil {
		log.Printf("Get conversation error: %v", err)
		status, message := chatErrorStatus(err)
		writeJSON(w, status, Response{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: views})
}

// Method Get /chat/contacts
func (h *ChatHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	roster, err := h.rosterUc.BuildRoster(r.Context(), viewer.StaffId)
	if err != nil {
		log.Printf("Build roster error: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: roster})
}

// Method Get /chat/unread_count?sender_id=
// With sender_id: unread from that sender to the viewer. Without: the
// viewer's total unread badge.
func (h *ChatHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	var count int64
	var err error
	if raw := r.URL.Query().Get("sender_id"); raw != "" {
		senderId, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || senderId <= 0 {
			writeJSON(w, http.StatusBadRequest, Response{Message: "invalid sender_id param"})
			return
		}
		count, err = h.convUc.GetUnreadCount(r.Context(), senderId, viewer.StaffId)
	} else {
		count, err = h.convUc.GetTotalUnread(r.Context(), viewer.StaffId)
	}
	if err != nil {
		log.Printf("Unread count error: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: map[string]int64{"count": count}})
}

// Method Post /chat/delete_conversation
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	var req struct {
		TargetId int64 `json:"targetId" validate:"required,gt=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
		return
	}

	if err := h.convUc.SoftDeleteConversation(r.Context(), viewer.StaffId, req.TargetId); err != nil {
		log.Printf("Delete conversation error: %v", err)
		status, message := chatErrorStatus(err)
		writeJSON(w, status, Response{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: map[string]string{"mode": usecase.DeleteModeLocal}})
}

// Method Post /chat/delete_messages
func (h *ChatHandler) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromContext(r.Context())
	if viewer == nil {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	var req struct {
		MessageIds []string `json:"messageIds" validate:"required,min=1"`
		Mode       string   `json:"mode" validate:"omitempty,oneof=local everyone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
		return
	}

	if err := h.convUc.SoftDeleteMessages(r.Context(), req.MessageIds, viewer.StaffId, req.Mode); err != nil {
		log.Printf("Delete messages error: %v", err)
		status, message := chatErrorStatus(err)
		writeJSON(w, status, Response{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success"})
}
