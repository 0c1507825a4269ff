package render

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/tracker"
)

// plain renders without ANSI sequences so output can be compared as text.
func plain() *Renderer {
	return New(lipgloss.NewRenderer(io.Discard))
}

func TestText(t *testing.T) {
	r := plain()
	text := "The 1111 fox jumped over 3333."

	tests := []struct {
		name     string
		revealed map[string]string
		want     string
	}{
		{"hidden", nil, "The  ___  fox jumped over  ___ ."},
		{"one revealed", map[string]string{"1111": "quick"}, "The  quick  fox jumped over  ___ ."},
		{"all revealed", map[string]string{"1111": "quick", "3333": "fence"}, "The  quick  fox jumped over  fence ."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Text(text, tt.revealed, false); got != tt.want {
				t.Fatalf("Text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLegendListsEveryCategory(t *testing.T) {
	legend := plain().Legend()
	for _, ci := range quiz.Categories {
		if !strings.Contains(legend, ci.Label) {
			t.Fatalf("legend %q missing %q", legend, ci.Label)
		}
	}
}

func TestClock(t *testing.T) {
	for in, want := range map[int]string{0: "0:00", 5: "0:05", 60: "1:00", 125: "2:05", -3: "0:00"} {
		if got := Clock(in); got != want {
			t.Fatalf("Clock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestScreen(t *testing.T) {
	s := tracker.Snapshot{
		Quiz:      quiz.View{Source: "animals.ods", Sheet: "Sheet1", Annotate: "The 1111 fox."},
		Tokens:    []string{"1111"},
		Status:    tracker.Won,
		Remaining: 42,
		Guesses:   []string{"quick", "slow"},
		Revealed:  map[string]string{"1111": "quick"},
		Notice:    "network down",
	}
	out := plain().Screen(s)
	for _, want := range []string{"animals.ods / Sheet1", "0:42", "quick", "revealed 1/1", "quick, slow", "You found every word!", "network down"} {
		if !strings.Contains(out, want) {
			t.Fatalf("screen missing %q:\n%s", want, out)
		}
	}

	s.Status = tracker.TimedOut
	if out := plain().Screen(s); !strings.Contains(out, "Time's up!") {
		t.Fatalf("timed out screen missing notice:\n%s", out)
	}
}
