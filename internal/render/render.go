// apps/go-server/internal/render/render.go
//
// Terminal rendering for the play command.
//
// Placeholders are drawn as colored blocks using the category color table:
// "___" until revealed, then the word itself. Once the game is won every
// revealed block turns green.

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/tracker"
)

const (
	hidden   = "___"
	wonColor = "#4CAF50"
	lowTime  = 10 // seconds; the clock turns red at or below this
)

// Renderer formats tracker state for one output.
type Renderer struct {
	blocks map[string]lipgloss.Style // token → block style
	won    lipgloss.Style
	clock  lipgloss.Style
	urgent lipgloss.Style
	subtle lipgloss.Style
	notice lipgloss.Style
	header lipgloss.Style
}

// New builds styles on r. A nil r uses the default renderer.
func New(r *lipgloss.Renderer) *Renderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	block := r.NewStyle().Bold(true).Padding(0, 1)
	out := &Renderer{
		blocks: make(map[string]lipgloss.Style, len(quiz.Categories)),
		won:    block.Background(lipgloss.Color(wonColor)).Foreground(lipgloss.Color("#FFFFFF")),
		clock:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		urgent: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		subtle: r.NewStyle().Foreground(lipgloss.Color("8")),
		notice: r.NewStyle().Foreground(lipgloss.Color("11")),
		header: r.NewStyle().Bold(true),
	}
	for _, ci := range quiz.Categories {
		out.blocks[ci.Token] = block.Background(lipgloss.Color(ci.Color)).Foreground(lipgloss.Color("#FFFFFF"))
	}
	return out
}

// Text renders annotate with every placeholder replaced by a colored block.
func (r *Renderer) Text(annotate string, revealed map[string]string, won bool) string {
	var b strings.Builder
	for _, seg := range quiz.Segments(annotate) {
		if !seg.Token {
			b.WriteString(seg.Text)
			continue
		}
		word, ok := revealed[seg.Text]
		switch {
		case ok && won:
			b.WriteString(r.won.Render(word))
		case ok:
			b.WriteString(r.blocks[seg.Text].Render(word))
		default:
			b.WriteString(r.blocks[seg.Text].Render(hidden))
		}
	}
	return b.String()
}

// Legend lists every category in its color.
func (r *Renderer) Legend() string {
	parts := make([]string, 0, len(quiz.Categories))
	for _, ci := range quiz.Categories {
		parts = append(parts, r.blocks[ci.Token].Render(ci.Label))
	}
	return strings.Join(parts, " ")
}

// Clock formats seconds as m:ss.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Screen renders a full frame for s.
func (r *Renderer) Screen(s tracker.Snapshot) string {
	var b strings.Builder

	clock := r.clock
	if s.Remaining <= lowTime {
		clock = r.urgent
	}
	fmt.Fprintf(&b, "%s  %s\n", r.header.Render(s.Quiz.Source+" / "+s.Quiz.Sheet), clock.Render(Clock(s.Remaining)))
	b.WriteString(r.Legend())
	b.WriteString("\n\n")
	b.WriteString(r.Text(s.Quiz.Annotate, s.Revealed, s.Status == tracker.Won))
	b.WriteString("\n\n")

	found := 0
	for _, tok := range s.Tokens {
		if _, ok := s.Revealed[tok]; ok {
			found++
		}
	}
	b.WriteString(r.subtle.Render(fmt.Sprintf("revealed %d/%d  guesses: %s", found, len(s.Tokens), strings.Join(s.Guesses, ", "))))
	b.WriteString("\n")

	switch s.Status {
	case tracker.Won:
		b.WriteString(r.won.Render("You found every word!"))
		b.WriteString("\n")
	case tracker.TimedOut:
		b.WriteString(r.urgent.Render("Time's up! Type :new for the next quiz."))
		b.WriteString("\n")
	}
	if s.Answer != nil && s.Answer.Solution != "" {
		b.WriteString(r.subtle.Render("solution: " + s.Answer.Solution))
		b.WriteString("\n")
	}
	if s.Notice != "" {
		b.WriteString(r.notice.Render(s.Notice))
		b.WriteString("\n")
	}
	return b.String()
}
