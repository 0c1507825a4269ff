// Package assets embeds a small sample corpus so the server runs even
// when no data directory or database is configured.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed data
var files embed.FS

// Sample returns the embedded corpus rooted at data/.
func Sample() fs.FS {
	sub, err := fs.Sub(files, "data")
	if err != nil {
		// data/ is embedded at build time; a missing directory is a build defect.
		panic(err)
	}
	return sub
}
