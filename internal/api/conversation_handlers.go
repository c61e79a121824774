// Package api provides the conversation and summary handlers for the
// StudyFlow endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// createConversationHandler handles POST /api/conversations
func (s *Server) createConversationHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("createConversationHandler invoked", "method", r.Method, "path", r.URL.Path)

	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("createConversationHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := req.Validate(); err != nil {
		slog.Warn("createConversationHandler validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	id, err := s.gw.CreateConversation(r.Context(), req)
	if err != nil {
		slog.Error("createConversationHandler create failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create conversation"))
		return
	}

	slog.Info("Conversation created", "conversationID", id, "characterID", req.CharacterID)
	writeJSONResponse(w, http.StatusCreated, models.Success(struct {
		ID string `json:"id"`
	}{ID: id}))
}

// saveMessagesHandler handles PUT /api/conversations/{id}/messages
func (s *Server) saveMessagesHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	slog.Debug("saveMessagesHandler invoked", "conversationID", conversationID)

	var req struct {
		Messages []models.FlowMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("saveMessagesHandler invalid JSON", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if err := s.gw.SaveMessages(r.Context(), conversationID, req.Messages); err != nil {
		status, msg := errorStatus(err, "Failed to save messages")
		slog.Error("saveMessagesHandler save failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, status, models.Error(msg))
		return
	}

	slog.Debug("saveMessagesHandler succeeded", "conversationID", conversationID, "count", len(req.Messages))
	writeJSONResponse(w, http.StatusOK, models.RecordedWithMessage("Messages saved"))
}

// getMessagesHandler handles GET /api/conversations/{id}/messages
func (s *Server) getMessagesHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	slog.Debug("getMessagesHandler invoked", "conversationID", conversationID)

	msgs, err := s.gw.LoadMessages(r.Context(), conversationID)
	if err != nil {
		status, msg := errorStatus(err, "Failed to load messages")
		slog.Error("getMessagesHandler load failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, status, models.Error(msg))
		return
	}
	if msgs == nil {
		msgs = []models.FlowMessage{}
	}

	writeJSONResponse(w, http.StatusOK, models.Success(msgs))
}

// endConversationHandler handles POST /api/conversations/{id}/end
func (s *Server) endConversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	slog.Debug("endConversationHandler invoked", "conversationID", conversationID)

	var req models.EndConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("endConversationHandler invalid JSON", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("endConversationHandler validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	result, err := s.gw.EndConversation(r.Context(), conversationID, req.UserID, req.Reason)
	if err != nil {
		status, msg := errorStatus(err, "Failed to end conversation")
		slog.Error("endConversationHandler failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, status, models.Error(msg))
		return
	}

	slog.Info("Conversation ended", "conversationID", conversationID, "reason", req.Reason)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// listSummariesHandler handles GET /api/summaries?user_id={id}
func (s *Server) listSummariesHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	slog.Debug("listSummariesHandler invoked", "userID", userID)

	summaries, err := s.gw.ListSummaries(r.Context(), userID)
	if err != nil {
		status, msg := errorStatus(err, "Failed to list summaries")
		slog.Error("listSummariesHandler failed", "error", err, "userID", userID)
		writeJSONResponse(w, status, models.Error(msg))
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}

	slog.Debug("listSummariesHandler succeeded", "userID", userID, "count", len(summaries))
	writeJSONResponse(w, http.StatusOK, models.Success(summaries))
}

// characterCatalog is the payload for GET /api/characters.
type characterCatalog struct {
	Maestri []*catalog.Maestro `json:"maestri"`
	Coaches []*catalog.Coach   `json:"coaches"`
	Buddies []*catalog.Buddy   `json:"buddies"`
}

// listCharactersHandler handles GET /api/characters
func (s *Server) listCharactersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(characterCatalog{
		Maestri: catalog.AllMaestri(),
		Coaches: catalog.AllCoaches(),
		Buddies: catalog.AllBuddies(),
	}))
}

// healthHandler handles GET /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("StudyFlow API is healthy", nil))
}

// errorStatus maps gateway errors onto HTTP statuses. Validation sentinels
// become 400s; everything else is a 500 with a generic message.
func errorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, models.ErrEmptyConversationID),
		errors.Is(err, models.ErrEmptyUserID),
		errors.Is(err, models.ErrEmptyCharacterID),
		errors.Is(err, models.ErrInvalidCharacterType):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, fallback
	}
}
