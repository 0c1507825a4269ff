package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleRecords() []Record {
	return []Record{
		{
			Source: "animals.ods", Sheet: "Sheet1", RowIndex: 0,
			Annotate:   "The 1111 fox jumped over 3333.",
			ToAnnotate: "The quick fox jumped over fence.",
			Solutions:  map[Category]string{Adjective: "quick", Noun: "fence"},
		},
		{
			Source: "cities.ods", Sheet: "Europe", RowIndex: 3,
			Annotate:  "5555 is the capital of 3333.",
			Solutions: map[Category]string{ProperNoun: "Paris", Noun: "France"},
		},
		{
			Source: "old.ods", Sheet: "Sheet1", RowIndex: 0,
			Annotate: "A 1111 day.",
			Legacy:   "Sunny",
		},
	}
}

func TestEntryIDDeterministic(t *testing.T) {
	a := EntryID("animals.ods", "Sheet1", 0)
	b := EntryID("animals.ods", "Sheet1", 0)
	if a != b {
		t.Fatalf("same triple produced %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %d (%q)", len(a), a)
	}
	if strings.Trim(a, "0123456789abcdef") != "" {
		t.Fatalf("id is not lowercase hex: %q", a)
	}
	if EntryID("animals.ods", "Sheet1", 1) == a {
		t.Fatal("different row index produced the same id")
	}
}

func TestEntryIDStableAcrossIndexing(t *testing.T) {
	first := NewCorpus(sampleRecords())
	second := NewCorpus(sampleRecords())
	for i, e := range first.Entries() {
		if got := second.Entries()[i].ID; got != e.ID {
			t.Fatalf("entry %d: id changed between runs: %q vs %q", i, e.ID, got)
		}
	}
}

func TestEntryIDNoCollisions(t *testing.T) {
	seen := make(map[string]string)
	for s := 0; s < 20; s++ {
		for sh := 0; sh < 5; sh++ {
			for r := 0; r < 1000; r++ {
				src := fmt.Sprintf("source-%02d.ods", s)
				sheet := fmt.Sprintf("Sheet%d", sh+1)
				id := EntryID(src, sheet, r)
				key := fmt.Sprintf("%s|%s|%d", src, sheet, r)
				if prev, ok := seen[id]; ok {
					t.Fatalf("collision: %s and %s both map to %s", prev, key, id)
				}
				seen[id] = key
			}
		}
	}
}

// Names containing the delimiter are not escaped; these two triples share a digest input.
func TestEntryIDDelimiterAmbiguity(t *testing.T) {
	if EntryID("a:b", "c", 1) != EntryID("a", "b:c", 1) {
		t.Fatal("expected delimiter-ambiguous triples to share an id")
	}
}

func TestRandomQuizEmptyCorpus(t *testing.T) {
	c := NewCorpus(nil)
	if c.Len() != 0 {
		t.Fatalf("expected empty corpus, got %d entries", c.Len())
	}
	if _, err := c.RandomQuiz(); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestRandomQuizHasNoSolutions(t *testing.T) {
	c := NewCorpus(sampleRecords())
	for i := 0; i < 50; i++ {
		v, err := c.RandomQuiz()
		if err != nil {
			t.Fatalf("random quiz: %v", err)
		}
		if _, ok := c.Lookup(v.ID); !ok {
			t.Fatalf("view id %q does not resolve", v.ID)
		}
		b, _ := json.Marshal(v)
		body := string(b)
		for _, bad := range []string{"solution", "to_annotate", "quick", "Paris", "Sunny", "rowIndex"} {
			if strings.Contains(body, bad) {
				t.Fatalf("view leaks %q: %s", bad, body)
			}
		}
	}
}

func TestAnswer(t *testing.T) {
	c := NewCorpus(sampleRecords())
	id := EntryID("animals.ods", "Sheet1", 0)

	got, err := c.Answer(id)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	want := Answer{
		ID:         id,
		ToAnnotate: "The quick fox jumped over fence.",
		Solutions:  map[Category]string{Adjective: "quick", Noun: "fence"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answer mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Answer("nonexistent-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnswerJSONShape(t *testing.T) {
	c := NewCorpus(sampleRecords())
	a, _ := c.Answer(EntryID("cities.ods", "Europe", 3))
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["solution_proper_nouns"] != "Paris" || m["solution_nouns"] != "France" {
		t.Fatalf("unexpected payload: %v", m)
	}
	if _, ok := m["solution_adj"]; ok {
		t.Fatalf("absent category should be omitted: %v", m)
	}

	var back Answer
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if diff := cmp.Diff(a, back); diff != "" {
		t.Fatalf("decoded answer mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckGuess(t *testing.T) {
	c := NewCorpus(sampleRecords())
	cities := EntryID("cities.ods", "Europe", 3)
	animals := EntryID("animals.ods", "Sheet1", 0)
	legacy := EntryID("old.ods", "Sheet1", 0)

	tests := []struct {
		name  string
		id    string
		guess string
		want  Match
	}{
		{"proper noun", cities, "paris", Match{Correct: true, Category: ProperNoun, Token: "5555", Word: "Paris"}},
		{"case and whitespace", cities, "  PARIS \t", Match{Correct: true, Category: ProperNoun, Token: "5555", Word: "Paris"}},
		{"noun", cities, "France", Match{Correct: true, Category: Noun, Token: "3333", Word: "France"}},
		{"adjective", animals, "quick", Match{Correct: true, Category: Adjective, Token: "1111", Word: "quick"}},
		{"incorrect", animals, "zzzznotaword", Match{}},
		{"empty", animals, "   ", Match{}},
		{"no punctuation folding", animals, "quick!", Match{}},
		{"legacy", legacy, "sunny", Match{Correct: true, Word: "Sunny", Legacy: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CheckGuess(tt.id, tt.guess)
			if err != nil {
				t.Fatalf("check guess: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("match mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckGuessCaseInsensitiveEquivalence(t *testing.T) {
	c := NewCorpus(sampleRecords())
	id := EntryID("cities.ods", "Europe", 3)
	a, _ := c.CheckGuess(id, "Paris")
	b, _ := c.CheckGuess(id, " paris ")
	if a != b {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestCheckGuessFirstCategoryWins(t *testing.T) {
	c := NewCorpus([]Record{{
		Source: "bad.ods", Sheet: "Sheet1",
		Annotate:  "1111 6666",
		Solutions: map[Category]string{Verb: "run", Adjective: "Run"},
	}})
	got, err := c.CheckGuess(c.Entries()[0].ID, "run")
	if err != nil {
		t.Fatalf("check guess: %v", err)
	}
	if got.Category != Adjective || got.Token != "1111" || got.Word != "Run" {
		t.Fatalf("expected adjective to win, got %+v", got)
	}
}

func TestCheckGuessNotFound(t *testing.T) {
	c := NewCorpus(sampleRecords())
	if _, err := c.CheckGuess("nonexistent-id", "paris"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchResponse(t *testing.T) {
	tests := []struct {
		in   Match
		want GuessResponse
	}{
		{Match{}, GuessResponse{}},
		{Match{Correct: true, Category: Noun, Token: "3333", Word: "fence"}, GuessResponse{Correct: true, Mask: "3333", Word: "fence"}},
		{Match{Correct: true, Word: "Sunny", Legacy: true}, GuessResponse{Correct: true, Solution: "Sunny"}},
	}
	for _, tt := range tests {
		if got := tt.in.Response(); got != tt.want {
			t.Errorf("Response(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
