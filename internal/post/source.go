package post

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"git.home.luguber.info/inful/postbuilder/internal/titlecase"
)

// SourceDocument is one Markdown file read from the source directory.
type SourceDocument struct {
	// Path is the file path as found in the source directory.
	Path string
	// Name is the file name without the .md extension.
	Name    string
	RawText []byte
	ModTime time.Time
	// Seq is the position of the file in name order; it breaks date ties.
	Seq int
}

// Scan lists the Markdown files directly under dir in name order.
// Subdirectories are skipped; symlinks count when they resolve to a
// regular file. Files are not read.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) != titlecase.SourceExt || len(e.Name()) == len(titlecase.SourceExt) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		switch {
		case e.Type().IsRegular():
		case e.Type()&os.ModeSymlink != 0:
			fi, statErr := os.Stat(p)
			if statErr != nil || !fi.Mode().IsRegular() {
				continue
			}
		default:
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadSource reads path as UTF-8 text. A leading byte order mark is
// honoured and removed; UTF-16 input marked as such is transcoded.
func ReadSource(path string, seq int) (SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return SourceDocument{}, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return SourceDocument{}, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return SourceDocument{}, err
	}
	raw, err := decode(data)
	if err != nil {
		return SourceDocument{}, err
	}
	return SourceDocument{
		Path:    path,
		Name:    titlecase.StripExt(filepath.Base(path)),
		RawText: raw,
		ModTime: fi.ModTime().UTC(),
		Seq:     seq,
	}, nil
}

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

func decode(data []byte) ([]byte, error) {
	utf16 := bytes.HasPrefix(data, bomUTF16BE) || bytes.HasPrefix(data, bomUTF16LE)
	if !utf16 && !utf8.Valid(data) {
		return nil, errors.New("invalid UTF-8 text")
	}
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return text, nil
}
