// apps/go-server/internal/quiz/corpus.go
//
// Entry indexer, quiz selector and guess evaluator.
// Responsibilities:
//   - Derive a stable id per record and index entries by id.
//   - Pick a uniformly random entry and strip it down to a View.
//   - Resolve answers and evaluate free-text guesses against an entry.
//
// Notes:
//   - A Corpus is immutable once built; all methods are safe for concurrent use.
//   - Ids are sha256(source:sheet:rowIndex) truncated to 16 hex chars.

package quiz

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
)

const (
	idDelimiter = ":"
	idHexLen    = 16
)

// EntryID returns the deterministic identifier for a (source, sheet, rowIndex) triple.
//
// The delimiter is not escaped, so names that themselves contain ':' can
// serialize to the same digest input as a different triple.
func EntryID(source, sheet string, rowIndex int) string {
	data := source + idDelimiter + sheet + idDelimiter + strconv.Itoa(rowIndex)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:idHexLen]
}

// Corpus is the indexed, read-only collection of entries.
type Corpus struct {
	entries []Entry
	byID    map[string]int
	sources map[string]struct{}
}

// NewCorpus indexes records in the order given.
// An empty slice yields a valid, empty Corpus.
func NewCorpus(records []Record) *Corpus {
	c := &Corpus{
		entries: make([]Entry, 0, len(records)),
		byID:    make(map[string]int, len(records)),
		sources: make(map[string]struct{}),
	}
	for _, rec := range records {
		id := EntryID(rec.Source, rec.Sheet, rec.RowIndex)
		c.byID[id] = len(c.entries)
		c.entries = append(c.entries, Entry{ID: id, Record: rec})
		c.sources[rec.Source] = struct{}{}
	}
	return c
}

// Len reports the number of indexed entries.
func (c *Corpus) Len() int { return len(c.entries) }

// Sources reports the number of distinct sources.
func (c *Corpus) Sources() int { return len(c.sources) }

// Entries returns the indexed entries in indexing order.
// The returned slice must not be modified.
func (c *Corpus) Entries() []Entry { return c.entries }

// Lookup resolves an id to its entry.
func (c *Corpus) Lookup(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ViewAt returns the View for the i-th entry.
func (c *Corpus) ViewAt(i int) (View, error) {
	if len(c.entries) == 0 {
		return View{}, ErrEmptyCorpus
	}
	return viewOf(c.entries[i%len(c.entries)]), nil
}

// RandomQuiz picks one entry uniformly at random.
func (c *Corpus) RandomQuiz() (View, error) {
	if len(c.entries) == 0 {
		return View{}, ErrEmptyCorpus
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(c.entries))))
	if err != nil {
		return View{}, err
	}
	return viewOf(c.entries[n.Int64()]), nil
}

func viewOf(e Entry) View {
	return View{
		ID:       e.ID,
		Source:   e.Record.Source,
		Sheet:    e.Record.Sheet,
		Annotate: e.Record.Annotate,
	}
}

// Answer returns the full solution payload for id, or ErrNotFound.
func (c *Corpus) Answer(id string) (Answer, error) {
	e, ok := c.Lookup(id)
	if !ok {
		return Answer{}, ErrNotFound
	}
	sol := make(map[Category]string, len(e.Record.Solutions))
	for k, v := range e.Record.Solutions {
		if v != "" {
			sol[k] = v
		}
	}
	return Answer{
		ID:         id,
		Solution:   e.Record.Legacy,
		ToAnnotate: e.Record.ToAnnotate,
		Solutions:  sol,
	}, nil
}

// CheckGuess evaluates guess against the entry identified by id.
//
// Comparison is exact after lowercasing and trimming surrounding whitespace.
// Categories are tried in table order and the first match wins. Records that
// carry no category solutions fall back to their legacy single solution.
// An incorrect guess returns a zero Match and a nil error.
func (c *Corpus) CheckGuess(id, guess string) (Match, error) {
	e, ok := c.Lookup(id)
	if !ok {
		return Match{}, ErrNotFound
	}
	g := Normalize(guess)
	if g == "" {
		return Match{}, nil
	}

	hasCategory := false
	for _, ci := range Categories {
		sol, ok := e.Record.Solution(ci.Category)
		if !ok {
			continue
		}
		hasCategory = true
		if Normalize(sol) == g {
			return Match{Correct: true, Category: ci.Category, Token: ci.Token, Word: sol}, nil
		}
	}

	if !hasCategory && e.Record.Legacy != "" && Normalize(e.Record.Legacy) == g {
		return Match{Correct: true, Word: e.Record.Legacy, Legacy: true}, nil
	}
	return Match{}, nil
}

// Normalize lowercases s and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
