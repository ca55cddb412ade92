package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/trivia-league/internal/model"
)

// ContentHandler serves questions, categories and category suggestions.
type ContentHandler struct {
	content     Content
	suggestions Suggestions
	logger      *slog.Logger
}

func NewContentHandler(content Content, suggestions Suggestions, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: content, suggestions: suggestions, logger: logger}
}

// HTTP: GET /data
func (h *ContentHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.content.ListQuestions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// HTTP: POST /addquestions
func (h *ContentHandler) HandleAddQuestions(w http.ResponseWriter, r *http.Request) {
	var questions []model.Question
	if err := decodeJSON(w, r, &questions); err != nil {
		writeError(w, err)
		return
	}
	if err := h.content.AddQuestions(r.Context(), questions); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "questions saved"})
}

// HTTP: GET /datacategories
func (h *ContentHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.content.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HTTP: POST /addcategories
func (h *ContentHandler) HandleAddCategories(w http.ResponseWriter, r *http.Request) {
	var categories []model.Category
	if err := decodeJSON(w, r, &categories); err != nil {
		writeError(w, err)
		return
	}
	if err := h.content.AddCategories(r.Context(), categories); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "categories saved"})
}

// HTTP: POST /suggestcategory
func (h *ContentHandler) HandleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategorySuggestion
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.suggestions.Suggest(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "suggestion sent"})
}
