package rows

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// DefaultSheet names the only sheet of a standalone CSV file.
const DefaultSheet = "Sheet1"

// DirLoader reads CSV sources from a file system.
//
// Layout:
//   - <root>/<name>.csv          → source "<name>.csv", sheet "Sheet1"
//   - <root>/<source>/<sheet>.csv → source "<source>", sheet "<sheet>"
//
// The first record of each file is the header row. Blank rows are skipped.
type DirLoader struct {
	FS   fs.FS
	Name string // used in errors; typically the directory path
}

// Load walks the file system and parses every CSV file.
func (d DirLoader) Load(ctx context.Context) (Source, error) {
	src := Source{}
	entries, err := fs.ReadDir(d.FS, ".")
	if err != nil {
		return nil, &LoadError{Path: d.Name, Err: err}
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() {
			sheets, err := d.loadSheets(name)
			if err != nil {
				return nil, err
			}
			if len(sheets) > 0 {
				src[name] = sheets
			}
			continue
		}
		if !isCSV(name) {
			continue
		}
		rs, err := d.loadFile(name)
		if err != nil {
			return nil, err
		}
		src[name] = Sheets{DefaultSheet: rs}
	}
	return src, nil
}

func (d DirLoader) loadSheets(dir string) (Sheets, error) {
	entries, err := fs.ReadDir(d.FS, dir)
	if err != nil {
		return nil, &LoadError{Path: path.Join(d.Name, dir), Err: err}
	}
	sheets := Sheets{}
	for _, e := range entries {
		if e.IsDir() || !isCSV(e.Name()) {
			continue
		}
		rs, err := d.loadFile(path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		sheets[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = rs
	}
	return sheets, nil
}

func (d DirLoader) loadFile(name string) ([]Row, error) {
	f, err := d.FS.Open(name)
	if err != nil {
		return nil, &LoadError{Path: path.Join(d.Name, name), Err: err}
	}
	defer f.Close()

	rs, err := ReadCSV(f)
	if err != nil {
		return nil, &LoadError{Path: path.Join(d.Name, name), Err: err}
	}
	return rs, nil
}

// ReadCSV parses a header-first CSV stream into rows.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		row := Row{}
		for i, v := range rec {
			if i >= len(header) || header[i] == "" || v == "" {
				continue
			}
			row[header[i]] = v
		}
		if len(row) == 0 {
			continue
		}
		out = append(out, row)
	}
}

func isCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}
