// apps/go-server/internal/tracker/tracker.go
//
// Reveal tracker: the player-side game state machine.
//
//	Idle ──NewGame──▶ Active ──all placeholders revealed──▶ Won
//	                    │
//	                    └──timer reaches 0──▶ TimedOut
//
// NewGame is accepted from any state and discards the previous session.
// Won and TimedOut accept no further guesses.
//
// Concurrency:
//   - All state lives behind one mutex; backend calls are made without it.
//   - Every async result is tagged with (session, quiz id) and dropped if the
//     tracker has moved on to another game in the meantime.
//   - At most one guess is in flight per session.
//   - At most one timer goroutine runs per tracker.

package tracker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
)

var (
	ErrNoQuiz         = errors.New("no game in progress")
	ErrGameOver       = errors.New("game is over")
	ErrEmptyGuess     = errors.New("guess is empty")
	ErrAlreadyGuessed = errors.New("already guessed")
	ErrGuessPending   = errors.New("a guess is already being checked")
	ErrStale          = errors.New("result belongs to an abandoned game")
)

// Backend is the guess evaluator as seen from the player side.
type Backend interface {
	RandomQuiz(ctx context.Context) (quiz.View, error)
	Answer(ctx context.Context, id string) (quiz.Answer, error)
	Guess(ctx context.Context, id, guess string) (quiz.GuessResponse, error)
}

// Status is the coarse game state.
type Status int

const (
	Idle Status = iota
	Active
	Won
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Won:
		return "won"
	case TimedOut:
		return "timed_out"
	default:
		return "idle"
	}
}

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	Session   string
	Quiz      quiz.View
	Tokens    []string          // distinct placeholders in Quiz.Annotate
	Status    Status
	Remaining int               // seconds
	Guesses   []string          // normalized, sorted
	Revealed  map[string]string // token → word
	Answer    *quiz.Answer      // set once the full answer has been fetched
	Notice    string            // last non-fatal failure, until dismissed
}

// Outcome reports the effect of one submitted guess.
type Outcome struct {
	Guess   string
	Correct bool
	Token   string // empty for incorrect or legacy matches
	Word    string
	Status  Status
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTickInterval overrides the one-second timer interval.
func WithTickInterval(d time.Duration) Option {
	return func(t *Tracker) { t.interval = d }
}

// WithListener registers fn to receive a Snapshot after every state change.
// fn is called without the tracker lock held.
func WithListener(fn func(Snapshot)) Option {
	return func(t *Tracker) { t.listener = fn }
}

// Tracker holds one player's session.
type Tracker struct {
	backend  Backend
	duration int
	interval time.Duration
	listener func(Snapshot)

	mu        sync.Mutex
	session   string
	view      quiz.View
	tokens    []string
	status    Status
	remaining int
	guesses   map[string]struct{}
	revealed  map[string]string
	answer    *quiz.Answer
	notice    string
	pending   bool

	timerParent context.Context    // non-nil while the timer is enabled
	stopTimer   context.CancelFunc // cancels the running timer goroutine
}

// New creates an idle tracker with a timer of the given length in seconds.
func New(b Backend, seconds int, opts ...Option) *Tracker {
	t := &Tracker{
		backend:  b,
		duration: seconds,
		interval: time.Second,
		guesses:  map[string]struct{}{},
		revealed: map[string]string{},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// NewGame discards the current session, fetches a new quiz and becomes Active.
// Results still in flight for the previous session are ignored.
func (t *Tracker) NewGame(ctx context.Context) error {
	session := uuid.NewString()
	t.mu.Lock()
	t.stopTimerLocked()
	t.session = session
	t.view = quiz.View{}
	t.tokens = nil
	t.status = Idle
	t.remaining = 0
	t.guesses = map[string]struct{}{}
	t.revealed = map[string]string{}
	t.answer = nil
	t.notice = ""
	t.pending = false
	t.mu.Unlock()

	v, err := t.backend.RandomQuiz(ctx)

	t.mu.Lock()
	if t.session != session {
		t.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		t.notice = err.Error()
		t.mu.Unlock()
		t.emit()
		return err
	}
	t.view = v
	t.tokens = quiz.DistinctTokens(v.Annotate)
	t.status = Active
	t.remaining = t.duration
	restart := t.timerParent != nil
	t.mu.Unlock()

	log.Debug().Str("session", session).Str("quiz", v.ID).Int("placeholders", len(t.tokens)).Msg("new game")
	if restart {
		t.restartTimer()
	}
	t.emit()
	return nil
}

// Submit checks one guess.
func (t *Tracker) Submit(ctx context.Context, guess string) (Outcome, error) {
	g := quiz.Normalize(guess)

	t.mu.Lock()
	switch {
	case t.status == Idle:
		t.mu.Unlock()
		return Outcome{}, ErrNoQuiz
	case t.status != Active:
		t.mu.Unlock()
		return Outcome{}, ErrGameOver
	case g == "":
		t.mu.Unlock()
		return Outcome{}, ErrEmptyGuess
	case t.pending:
		t.mu.Unlock()
		return Outcome{}, ErrGuessPending
	}
	if _, dup := t.guesses[g]; dup {
		t.notice = `You already guessed "` + g + `"`
		t.mu.Unlock()
		t.emit()
		return Outcome{Guess: g, Status: Active}, ErrAlreadyGuessed
	}
	t.pending = true
	session, id := t.session, t.view.ID
	t.mu.Unlock()

	res, err := t.backend.Guess(ctx, id, g)

	t.mu.Lock()
	if !t.current(session, id) {
		t.mu.Unlock()
		log.Debug().Str("quiz", id).Msg("dropping stale guess result")
		return Outcome{}, ErrStale
	}
	t.pending = false
	if err != nil {
		t.notice = err.Error()
		t.mu.Unlock()
		t.emit()
		return Outcome{Guess: g, Status: Active}, err
	}
	if t.status != Active {
		// timed out while the request was in flight
		st := t.status
		t.mu.Unlock()
		return Outcome{Guess: g, Status: st}, ErrGameOver
	}

	t.guesses[g] = struct{}{}
	t.notice = ""
	out := Outcome{Guess: g, Correct: res.Correct, Word: res.Word}
	if res.Correct && res.Mask != "" && t.hasToken(res.Mask) {
		t.revealed[res.Mask] = res.Word
		out.Token = res.Mask
	}
	if res.Correct && res.Word == "" {
		out.Word = res.Solution
	}
	won := out.Token != "" && t.allRevealed()
	if won {
		t.status = Won
		t.stopTimerLocked()
	}
	out.Status = t.status
	t.mu.Unlock()
	t.emit()

	if won {
		t.fetchAnswer(ctx, session, id, false)
	}
	return out, nil
}

// Tick advances the clock by one step. It is a no-op unless the game is Active.
// Reaching zero moves the game to TimedOut and fetches the full answer.
func (t *Tracker) Tick(ctx context.Context) {
	t.mu.Lock()
	t.tickLocked(ctx, t.session)
}

func (t *Tracker) tick(ctx context.Context, session string) {
	t.mu.Lock()
	t.tickLocked(ctx, session)
}

// tickLocked is entered with t.mu held and releases it.
func (t *Tracker) tickLocked(ctx context.Context, session string) {
	if t.session != session || t.status != Active || t.remaining <= 0 {
		t.mu.Unlock()
		return
	}
	t.remaining--
	expired := t.remaining == 0
	if expired {
		t.status = TimedOut
		t.stopTimerLocked()
	}
	id := t.view.ID
	t.mu.Unlock()
	t.emit()

	if expired {
		log.Debug().Str("quiz", id).Msg("time is up")
		t.fetchAnswer(ctx, session, id, true)
	}
}

// fetchAnswer loads the full answer for (session, id). With reveal set, every
// placeholder present in the text is filled in.
func (t *Tracker) fetchAnswer(ctx context.Context, session, id string, reveal bool) {
	a, err := t.backend.Answer(ctx, id)

	t.mu.Lock()
	if !t.current(session, id) {
		t.mu.Unlock()
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("quiz", id).Msg("fetch answer")
		t.notice = err.Error()
		t.mu.Unlock()
		t.emit()
		return
	}
	t.answer = &a
	if reveal {
		for tok, w := range a.Reveal() {
			if t.hasToken(tok) {
				t.revealed[tok] = w
			}
		}
	}
	t.mu.Unlock()
	t.emit()
}

// DismissNotice clears the current notice.
func (t *Tracker) DismissNotice() {
	t.mu.Lock()
	t.notice = ""
	t.mu.Unlock()
	t.emit()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	s := Snapshot{
		Session:   t.session,
		Quiz:      t.view,
		Tokens:    append([]string(nil), t.tokens...),
		Status:    t.status,
		Remaining: t.remaining,
		Guesses:   make([]string, 0, len(t.guesses)),
		Revealed:  make(map[string]string, len(t.revealed)),
		Notice:    t.notice,
	}
	for g := range t.guesses {
		s.Guesses = append(s.Guesses, g)
	}
	sort.Strings(s.Guesses)
	for k, v := range t.revealed {
		s.Revealed[k] = v
	}
	if t.answer != nil {
		a := *t.answer
		s.Answer = &a
	}
	return s
}

func (t *Tracker) emit() {
	if t.listener == nil {
		return
	}
	t.listener(t.Snapshot())
}

func (t *Tracker) current(session, id string) bool {
	return t.session == session && t.view.ID == id
}

func (t *Tracker) hasToken(tok string) bool {
	for _, x := range t.tokens {
		if x == tok {
			return true
		}
	}
	return false
}

func (t *Tracker) allRevealed() bool {
	if len(t.tokens) == 0 {
		return false
	}
	for _, tok := range t.tokens {
		if _, ok := t.revealed[tok]; !ok {
			return false
		}
	}
	return true
}
