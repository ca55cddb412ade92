package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/auth"
)

// PointsResponse uses the snake_case key existing clients read.
type PointsResponse struct {
	KnowledgePoints int    `json:"knowledge_points"`
	League          string `json:"league,omitempty"`
}

// UpdatePointsRequest is the body of POST /updatePoints. NewPoints is a
// pointer so a missing field can be told apart from 0.
type UpdatePointsRequest struct {
	Username  string `json:"username"`
	NewPoints *int   `json:"newPoints"`
}

// QuizResultRequest is the body of POST /quizResult.
type QuizResultRequest struct {
	Username  string `json:"username"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
}

// PointsHandler serves knowledge points and profiles.
type PointsHandler struct {
	points Points
	authz  Authorizer
	logger *slog.Logger
}

func NewPointsHandler(points Points, authz Authorizer, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{points: points, authz: authz, logger: logger}
}

// HTTP: GET /getUserPoints/{username}
func (h *PointsHandler) HandleGetPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.points.GetPoints(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PointsResponse{KnowledgePoints: points})
}

// HandleUpdatePoints overwrites a player's points.
//
// HTTP: POST /updatePoints
func (h *PointsHandler) HandleUpdatePoints(w http.ResponseWriter, r *http.Request) {
	var req UpdatePointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" {
		writeError(w, apperror.ValidationFailed("username", "username is required"))
		return
	}
	if err := h.authz.Authorize(r.Context(), req.Username); err != nil {
		writeError(w, err)
		return
	}

	if err := h.points.UpdatePoints(r.Context(), req.Username, req.NewPoints); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "points updated"})
}

// HandleQuizResult scores a finished quiz on the server.
//
// HTTP: POST /quizResult
func (h *PointsHandler) HandleQuizResult(w http.ResponseWriter, r *http.Request) {
	var req QuizResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" {
		writeError(w, apperror.ValidationFailed("username", "username is required"))
		return
	}
	if err := h.authz.Authorize(r.Context(), req.Username); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.points.ApplyQuizResult(r.Context(), req.Username, req.Correct, req.Incorrect)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PointsResponse{
		KnowledgePoints: outcome.KnowledgePoints,
		League:          outcome.League.String(),
	})
}

// HTTP: GET /profile/{username}
func (h *PointsHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.points.Profile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleMe returns the profile of the session's player.
//
// HTTP: GET /me
func (h *PointsHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("a valid session is required"))
		return
	}

	profile, err := h.points.Profile(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
