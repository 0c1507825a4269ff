// apps/go-server/internal/quiz/types.go
//
// Core type definitions for the Redactle masking engine.
// Defines:
//   - Record:   one normalized source row (masked text + per-category solutions).
//   - Entry:    a Record paired with its stable, opaque identifier.
//   - View:     the player-facing quiz (never carries solutions).
//   - Match:    the outcome of evaluating a single guess.

package quiz

import "errors"

var (
	// ErrEmptyCorpus is returned when a quiz is requested from a corpus with no entries.
	ErrEmptyCorpus = errors.New("no quiz entries found")

	// ErrNotFound is returned when an id does not resolve to an entry.
	ErrNotFound = errors.New("quiz not found")
)

// Record is one row of source data, normalized at ingestion time.
type Record struct {
	Source   string // file (or table) the row came from
	Sheet    string // sheet name within the source
	RowIndex int    // zero-based data row index within the sheet

	Annotate   string // masked text containing placeholder tokens
	ToAnnotate string // unmasked text, if the source provides it
	Legacy     string // single-solution field from the older data layout

	Solutions map[Category]string // absent categories have no key
}

// Solution returns the solution text for c and whether one is present.
func (r Record) Solution(c Category) (string, bool) {
	s, ok := r.Solutions[c]
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Entry is an indexed Record.
type Entry struct {
	ID     string
	Record Record
}

// View is the player-facing quiz. Solutions are never included.
type View struct {
	ID       string `json:"id"`
	Source   string `json:"fileName"`
	Sheet    string `json:"sheetName"`
	Annotate string `json:"annotate"`
}

// Match is the result of a guess evaluation.
// A zero Match means the guess was incorrect.
type Match struct {
	Correct  bool
	Category Category // empty in legacy mode
	Token    string   // placeholder token revealed by the guess
	Word     string   // original (non-normalized) solution text
	Legacy   bool     // matched the single legacy solution field
}

// GuessResponse is the wire shape of POST /api/quiz/{id}/guess.
type GuessResponse struct {
	Correct  bool   `json:"correct"`
	Mask     string `json:"mask,omitempty"`
	Word     string `json:"word,omitempty"`
	Solution string `json:"solution,omitempty"`
}

// Response converts a Match to its wire shape.
func (m Match) Response() GuessResponse {
	switch {
	case !m.Correct:
		return GuessResponse{Correct: false}
	case m.Legacy:
		return GuessResponse{Correct: true, Solution: m.Word}
	default:
		return GuessResponse{Correct: true, Mask: m.Token, Word: m.Word}
	}
}
