package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// FollowResponse is returned by follow and unfollow.
type FollowResponse struct {
	Success          bool     `json:"success"`
	UpdatedFollowing []string `json:"updatedFollowing"`
}

// LeaderboardHandler serves rankings and the follow graph.
type LeaderboardHandler struct {
	leaderboard Leaderboard
	follows     FollowGraph
	authz       Authorizer
	logger      *slog.Logger
}

func NewLeaderboardHandler(leaderboard Leaderboard, follows FollowGraph, authz Authorizer, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		follows:     follows,
		authz:       authz,
		logger:      logger,
	}
}

// HandleGlobal returns every player ranked by knowledge points.
//
// HTTP: GET /leaderboard
func (h *LeaderboardHandler) HandleGlobal(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.leaderboard.GlobalRanking(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// HandlePlayerView returns the player's league and following leaderboards.
//
// HTTP: GET /leaderboard/{username}
func (h *LeaderboardHandler) HandlePlayerView(w http.ResponseWriter, r *http.Request) {
	view, err := h.leaderboard.PlayerView(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleFollow adds a follow edge.
//
// HTTP: POST /follow/{username}/{playerToFollow}
func (h *LeaderboardHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.authz.Authorize(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}

	following, err := h.follows.Follow(r.Context(), username, chi.URLParam(r, "playerToFollow"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowResponse{Success: true, UpdatedFollowing: following})
}

// HandleUnfollow removes a follow edge.
//
// HTTP: POST /unfollow/{username}/{playerToUnfollow}
func (h *LeaderboardHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.authz.Authorize(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}

	following, err := h.follows.Unfollow(r.Context(), username, chi.URLParam(r, "playerToUnfollow"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FollowResponse{Success: true, UpdatedFollowing: following})
}
