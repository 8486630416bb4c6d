package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/infra/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	ctx := logging.WithSessID(r.Context(), req.SessionID)

	reply, err := s.chatUC.SendMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message and sessionId are required"})
			return
		}
		// Never leak provider detail to the chat caller.
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get a response from leo"})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: req.SessionID})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	all := s.chatUC.ListConversations(r.Context())
	writeJSON(w, http.StatusOK, struct {
		Conversations any `json:"conversations"`
		Total         int `json:"total"`
	}{Conversations: all, Total: len(all)})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.chatUC.ClearConversations(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to clear conversations"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

type loginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if !s.auth.CheckSecret(req.Secret) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to mint token"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "ok", Message: "leo chat server is running"})
}
