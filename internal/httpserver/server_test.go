package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/rows"
	"github.com/robalobadob/redactle/apps/go-server/internal/store"
)

func newTestServer() (*Server, *quiz.Corpus) {
	c := quiz.NewCorpus([]quiz.Record{
		{
			Source: "animals.ods", Sheet: "Sheet1", RowIndex: 0,
			Annotate:  "The 1111 fox jumped over 3333.",
			Solutions: map[quiz.Category]string{quiz.Adjective: "quick", quiz.Noun: "fence"},
		},
		{
			Source: "old.ods", Sheet: "Sheet1", RowIndex: 0,
			Annotate: "A 1111 day.",
			Legacy:   "Sunny",
		},
	})
	return New(store.Static{C: c}, Config{}), c
}

type failingProvider struct{ err error }

func (f failingProvider) Corpus(context.Context) (*quiz.Corpus, error) { return nil, f.err }

func do(s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer()
	w := do(srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode[map[string]string](t, w); got["status"] != "ok" {
		t.Fatalf("unexpected body: %v", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestRandomQuiz(t *testing.T) {
	srv, c := newTestServer()
	for _, path := range []string{"/api/quiz/", "/api/quiz"} {
		w := do(srv, "GET", path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
		body := w.Body.String()
		if strings.Contains(body, "solution") || strings.Contains(body, "quick") || strings.Contains(body, "Sunny") {
			t.Fatalf("%s: quiz leaks a solution: %s", path, body)
		}
		var v quiz.View
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			t.Fatalf("decode view: %v", err)
		}
		if _, ok := c.Lookup(v.ID); !ok {
			t.Fatalf("%s: id %q does not resolve", path, v.ID)
		}
	}
}

func TestRandomQuizEmptyCorpus(t *testing.T) {
	srv := New(store.Static{C: quiz.NewCorpus(nil)}, Config{})
	w := do(srv, "GET", "/api/quiz/", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	got := decode[errorRes](t, w)
	if got.Error == "" || got.Message != quiz.ErrEmptyCorpus.Error() {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestLoadFailure(t *testing.T) {
	err := &rows.LoadError{Path: "/data", Err: errors.New("permission denied")}
	srv := New(failingProvider{err: err}, Config{})
	for _, tc := range []struct{ method, path, body string }{
		{"GET", "/api/quiz/", ""},
		{"GET", "/api/quiz/abc/answer", ""},
		{"POST", "/api/quiz/abc/guess", `{"guess":"x"}`},
	} {
		w := do(srv, tc.method, tc.path, tc.body)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d", tc.method, tc.path, w.Code)
		}
		if got := decode[errorRes](t, w); !strings.Contains(got.Message, "permission denied") {
			t.Fatalf("%s %s: message should carry the cause: %+v", tc.method, tc.path, got)
		}
	}
}

func TestAnswer(t *testing.T) {
	srv, c := newTestServer()
	id := c.Entries()[0].ID

	w := do(srv, "GET", "/api/quiz/"+id+"/answer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode[map[string]string](t, w)
	want := map[string]string{
		"id":             id,
		"solution":       "",
		"solution_adj":   "quick",
		"solution_nouns": "fence",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answer mismatch (-want +got):\n%s", diff)
	}
}

func TestAnswerNotFound(t *testing.T) {
	srv, _ := newTestServer()
	w := do(srv, "GET", "/api/quiz/nonexistent-id/answer", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	got := decode[errorRes](t, w)
	if got.Error != "Quiz not found" || !strings.Contains(got.Message, "nonexistent-id") {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestGuess(t *testing.T) {
	srv, c := newTestServer()
	id := c.Entries()[0].ID
	legacy := c.Entries()[1].ID

	tests := []struct {
		name string
		id   string
		body string
		code int
		want quiz.GuessResponse
	}{
		{"correct", id, `{"guess":"quick"}`, 200, quiz.GuessResponse{Correct: true, Mask: "1111", Word: "quick"}},
		{"normalized", id, `{"guess":"  FENCE "}`, 200, quiz.GuessResponse{Correct: true, Mask: "3333", Word: "fence"}},
		{"incorrect", id, `{"guess":"zzzznotaword"}`, 200, quiz.GuessResponse{}},
		{"legacy", legacy, `{"guess":"sunny"}`, 200, quiz.GuessResponse{Correct: true, Solution: "Sunny"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "POST", "/api/quiz/"+tt.id+"/guess", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
			if diff := cmp.Diff(tt.want, decode[quiz.GuessResponse](t, w)); diff != "" {
				t.Fatalf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGuessIncorrectShape(t *testing.T) {
	srv, c := newTestServer()
	w := do(srv, "POST", "/api/quiz/"+c.Entries()[0].ID+"/guess", `{"guess":"nope"}`)
	if got := strings.TrimSpace(w.Body.String()); got != `{"correct":false}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestGuessInvalidInput(t *testing.T) {
	srv, c := newTestServer()
	id := c.Entries()[0].ID
	for _, body := range []string{`{}`, `{"guess":""}`, `{"guess":42}`, `not json`, `{"guess":null}`} {
		w := do(srv, "POST", "/api/quiz/"+id+"/guess", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
		if got := decode[errorRes](t, w); got.Error != "Invalid request" {
			t.Fatalf("body %s: unexpected error body: %+v", body, got)
		}
	}
}

func TestGuessNotFound(t *testing.T) {
	srv, _ := newTestServer()
	w := do(srv, "POST", "/api/quiz/nonexistent-id/guess", `{"guess":"quick"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDailyQuiz(t *testing.T) {
	srv, c := newTestServer()
	srv.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }

	first := decode[dailyRes](t, do(srv, "GET", "/api/quiz/daily", ""))
	second := decode[dailyRes](t, do(srv, "GET", "/api/quiz/daily", ""))
	if first != second {
		t.Fatalf("daily quiz changed within a day: %+v vs %+v", first, second)
	}
	if first.Date != "2026-10-16" {
		t.Fatalf("date = %q, want 2026-10-16", first.Date)
	}
	if _, ok := c.Lookup(first.ID); !ok {
		t.Fatalf("daily id %q does not resolve", first.ID)
	}
}

func TestCorpusStatsAndNotFoundRoute(t *testing.T) {
	srv, _ := newTestServer()
	got := decode[map[string]int](t, do(srv, "GET", "/debug/corpus", ""))
	if got["entries"] != 2 || got["sources"] != 2 {
		t.Fatalf("unexpected stats: %v", got)
	}
	w := do(srv, "GET", "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := New(store.Static{C: quiz.NewCorpus(nil)}, Config{ClientOrigin: "https://play.example"})
	w := do(srv, "OPTIONS", "/api/quiz/abc/guess", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://play.example" {
		t.Fatalf("allow-origin = %q", got)
	}
}
