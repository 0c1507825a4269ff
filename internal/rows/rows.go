// apps/go-server/internal/rows/rows.go
//
// Row source collaborators for the quiz corpus.
//
// Responsibilities:
//   - Define the loosely-typed tabular shape produced by loaders
//     (source → sheet → ordered rows of column → value).
//   - Normalize heterogeneous column names onto quiz.Record once, at ingestion.
//
// Loaders:
//   - DirLoader:    a directory (or embedded fs.FS) of CSV files.
//   - SQLiteLoader: rows previously imported into a SQLite database.
//
// Column fallbacks (first non-empty wins):
//   annotate: annotate, Annotate, annotation, text (else the row as JSON)
//   legacy:   solution, Solution, SOLUTION, to_annotate

package rows

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
)

// Row is one record keyed by the source's column headers.
type Row map[string]string

// Sheets maps sheet name to its ordered rows.
type Sheets map[string][]Row

// Source maps source (file) name to its sheets.
type Source map[string]Sheets

// Loader produces a Source.
type Loader interface {
	Load(ctx context.Context) (Source, error)
}

// LoadError reports an unreadable row source.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load rows from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var (
	annotateKeys = []string{"annotate", "Annotate", "annotation", "text"}
	legacyKeys   = []string{"solution", "Solution", "SOLUTION", "to_annotate"}
)

// Records flattens src into quiz records.
// Sources and sheets are visited in lexical order so indexing order is stable.
func Records(src Source) []quiz.Record {
	var out []quiz.Record
	for _, file := range sortedKeys(src) {
		sheets := src[file]
		names := make([]string, 0, len(sheets))
		for name := range sheets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, sheet := range names {
			for i, row := range sheets[sheet] {
				out = append(out, Normalize(file, sheet, i, row))
			}
		}
	}
	return out
}

// Normalize maps one loose row onto the fixed record schema.
func Normalize(source, sheet string, rowIndex int, row Row) quiz.Record {
	rec := quiz.Record{
		Source:     source,
		Sheet:      sheet,
		RowIndex:   rowIndex,
		Annotate:   first(row, annotateKeys),
		ToAnnotate: row["to_annotate"],
		Legacy:     first(row, legacyKeys),
		Solutions:  make(map[quiz.Category]string),
	}
	if rec.Annotate == "" {
		b, _ := json.Marshal(row)
		rec.Annotate = string(b)
	}
	for _, ci := range quiz.Categories {
		if v := row[ci.Field]; v != "" {
			rec.Solutions[ci.Category] = v
		}
	}
	return rec
}

// Count returns the number of rows across all sources and sheets.
func Count(src Source) int {
	n := 0
	for _, sheets := range src {
		for _, rs := range sheets {
			n += len(rs)
		}
	}
	return n
}

func first(row Row, keys []string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys(src Source) []string {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
