package tracker

import (
	"context"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/store"
)

// Local is a Backend that evaluates guesses in-process.
type Local struct {
	Corpus store.Provider
}

func (l Local) RandomQuiz(ctx context.Context) (quiz.View, error) {
	c, err := l.Corpus.Corpus(ctx)
	if err != nil {
		return quiz.View{}, err
	}
	return c.RandomQuiz()
}

func (l Local) Answer(ctx context.Context, id string) (quiz.Answer, error) {
	c, err := l.Corpus.Corpus(ctx)
	if err != nil {
		return quiz.Answer{}, err
	}
	return c.Answer(id)
}

func (l Local) Guess(ctx context.Context, id, guess string) (quiz.GuessResponse, error) {
	c, err := l.Corpus.Corpus(ctx)
	if err != nil {
		return quiz.GuessResponse{}, err
	}
	m, err := c.CheckGuess(id, guess)
	if err != nil {
		return quiz.GuessResponse{}, err
	}
	return m.Response(), nil
}
