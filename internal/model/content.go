package model

// Question is one multiple-choice trivia question. Answer must equal one of
// Options.
type Question struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Image    string   `json:"image,omitempty"`
}

// Category groups questions for the category picker.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// CategorySuggestion is a player's proposal for a new category. It is mailed
// to the support inbox, never stored.
type CategorySuggestion struct {
	CategoryName        string `json:"categoryName"`
	CategoryDescription string `json:"categoryDescription"`
	Username            string `json:"username"`
}
