package assets

import (
	"context"
	"testing"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/rows"
)

func TestSampleCorpusLoads(t *testing.T) {
	src, err := rows.DirLoader{FS: Sample(), Name: "embedded"}.Load(context.Background())
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	c := quiz.NewCorpus(rows.Records(src))
	if c.Len() == 0 {
		t.Fatal("sample corpus is empty")
	}
	for _, e := range c.Entries() {
		if len(quiz.DistinctTokens(e.Record.Annotate)) == 0 {
			t.Errorf("%s/%s row %d has no placeholders", e.Record.Source, e.Record.Sheet, e.Record.RowIndex)
		}
		for _, tok := range quiz.DistinctTokens(e.Record.Annotate) {
			ci, _ := quiz.InfoForToken(tok)
			if _, ok := e.Record.Solution(ci.Category); !ok {
				t.Errorf("%s/%s row %d: %s has no %s solution", e.Record.Source, e.Record.Sheet, e.Record.RowIndex, tok, ci.Field)
			}
		}
	}
}
