// Package scaffold creates the starter layout of a new blog and new post
// files.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/postbuilder/internal/titlecase"
)

//go:embed files
var files embed.FS

// ErrExists is returned when a file would be overwritten without force.
var ErrExists = errors.New("file already exists")

// Result lists what Init did, with paths relative to the site root.
type Result struct {
	Created []string
	Skipped []string
}

// Init writes the starter site into root. Existing files are kept unless
// force is set.
func Init(root string, force bool) (Result, error) {
	var res Result
	err := fs.WalkDir(files, "files", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel("files", filepath.FromSlash(p))
		if err != nil {
			return err
		}
		dst := filepath.Join(root, rel)
		if _, statErr := os.Stat(dst); statErr == nil && !force {
			res.Skipped = append(res.Skipped, rel)
			return nil
		}
		data, err := files.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		// #nosec G306 -- site sources are meant to be world readable
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		res.Created = append(res.Created, rel)
		return nil
	})
	return res, err
}

// NewPost creates srcDir/<slug>.md for title, with a metadata block holding
// the title and date. The slug is derived from the title.
func NewPost(srcDir, title string, date time.Time, force bool) (string, error) {
	slug := titlecase.ToSlug(title)
	if slug == "" {
		return "", errors.New("empty title")
	}
	if slug != filepath.Base(slug) {
		return "", fmt.Errorf("title %q does not make a valid file name", title)
	}
	path := filepath.Join(srcDir, slug+titlecase.SourceExt)
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return "", err
	}
	body := fmt.Sprintf("title: %s\ndate: %s\n\n# %s\n\n", title, date.UTC().Format(time.RFC3339), title)
	// #nosec G306 -- site sources are meant to be world readable
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
