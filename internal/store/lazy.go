// apps/go-server/internal/store/lazy.go
//
// Process-wide corpus cache.
//
// Characteristics:
//   - The corpus is loaded on first access, exactly once (sync.Once).
//   - Concurrent first callers block until the single load completes.
//   - A load failure is cached too; the process must be restarted to retry.
//   - After load the corpus is immutable, so reads need no locking.

package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/rows"
)

// Provider hands out the loaded corpus.
// Implementations may be backed by a lazy loader (this package) or a fixed value.
type Provider interface {
	// Corpus returns the indexed corpus, loading it if necessary.
	Corpus(ctx context.Context) (*quiz.Corpus, error)
}

// Lazy loads a corpus from a rows.Loader on first use.
type Lazy struct {
	loader rows.Loader

	once   sync.Once
	corpus *quiz.Corpus
	err    error
}

// NewLazy constructs a Lazy provider over loader.
func NewLazy(loader rows.Loader) *Lazy {
	return &Lazy{loader: loader}
}

// Corpus implements Provider.
func (l *Lazy) Corpus(ctx context.Context) (*quiz.Corpus, error) {
	l.once.Do(func() {
		// Detach from the first request's deadline; the result is shared by every caller.
		src, err := l.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			l.err = err
			log.Error().Err(err).Msg("load corpus")
			return
		}
		l.corpus = quiz.NewCorpus(rows.Records(src))
		log.Info().
			Int("sources", l.corpus.Sources()).
			Int("entries", l.corpus.Len()).
			Msg("corpus loaded")
	})
	return l.corpus, l.err
}

// Static is a Provider over an already-built corpus.
type Static struct{ C *quiz.Corpus }

// Corpus implements Provider.
func (s Static) Corpus(context.Context) (*quiz.Corpus, error) { return s.C, nil }
