// Package frontmatter separates document metadata from the Markdown body.
//
// Two forms are recognised. Delimited blocks (`---` YAML, `+++` TOML,
// `;;;` JSON) are decoded with adrg/frontmatter. Otherwise a leading
// MultiMarkdown meta block is read: `key: value` lines, continuation lines
// indented by four or more spaces, terminated by a blank line.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// Meta is the metadata extracted from one document.
type Meta struct {
	// Title is empty when the document declares none.
	Title string
	// Date is zero when the document declares none or it could not be parsed.
	Date time.Time
	// InvalidDate holds a declared date that no known layout matched.
	InvalidDate string
	// Fields holds every declared key, lower-cased for meta blocks.
	Fields map[string]any
	// Raw is the metadata block exactly as written, delimiters included.
	Raw string
}

var (
	metaKeyRE  = regexp.MustCompile(`^ {0,3}([A-Za-z0-9_-]+):\s*(.*)$`)
	metaContRE = regexp.MustCompile(`^ {4,}(.*)$`)
)

var delimiters = [][]byte{[]byte("---"), []byte("+++"), []byte(";;;")}

// Extract returns the document metadata and the remaining Markdown body.
// Documents without metadata return an empty Meta and src unchanged.
func Extract(src []byte) (Meta, []byte, error) {
	if opensDelimitedBlock(src) {
		return extractDelimited(src)
	}
	meta, body := extractMetaBlock(src)
	return meta, body, nil
}

// opensDelimitedBlock reports whether src starts with a delimiter line
// followed by a non-blank line. A leading `---` followed by a blank line is a
// thematic break, not front matter.
func opensDelimitedBlock(src []byte) bool {
	first, rest, ok := bytes.Cut(src, []byte("\n"))
	if !ok {
		return false
	}
	first = bytes.TrimRight(first, " \t\r")
	for _, d := range delimiters {
		if bytes.Equal(first, d) {
			next, _, _ := bytes.Cut(rest, []byte("\n"))
			return len(bytes.TrimSpace(next)) > 0
		}
	}
	return false
}

func extractDelimited(src []byte) (Meta, []byte, error) {
	fields := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(src), &fields)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	meta := Meta{Fields: fields, Raw: string(src[:len(src)-len(body)])}
	if v, ok := fields["title"]; ok {
		meta.Title = scalarString(v)
	}
	if v, ok := fields["date"]; ok {
		meta.setDate(v)
	}
	return meta, body, nil
}

func extractMetaBlock(src []byte) (Meta, []byte) {
	text := string(src)
	values := map[string][]string{}
	var order []string
	key := ""
	offset := 0

	for offset < len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		next := len(text)
		if end >= 0 {
			next = offset + end + 1
		}
		line := strings.TrimRight(text[offset:next], "\r\n")

		if strings.TrimSpace(line) == "" {
			if key != "" {
				offset = next
			}
			break
		}
		if m := metaKeyRE.FindStringSubmatch(line); m != nil {
			key = strings.ToLower(m[1])
			if _, seen := values[key]; !seen {
				order = append(order, key)
			}
			values[key] = append(values[key], strings.TrimSpace(m[2]))
		} else if m := metaContRE.FindStringSubmatch(line); m != nil && key != "" {
			values[key] = append(values[key], strings.TrimSpace(m[1]))
		} else {
			break
		}
		offset = next
	}

	if key == "" {
		return Meta{}, src
	}

	meta := Meta{Fields: make(map[string]any, len(order)), Raw: text[:offset]}
	for _, k := range order {
		meta.Fields[k] = strings.Join(values[k], " ")
	}
	if v, ok := values["title"]; ok {
		meta.Title = strings.Join(v, " ")
	}
	if v, ok := values["date"]; ok {
		meta.setDate(strings.Join(v, " "))
	}
	return meta, src[offset:]
}

func (m *Meta) setDate(v any) {
	t, err := ParseDate(v)
	if err != nil {
		m.InvalidDate = scalarString(v)
		return
	}
	m.Date = t
}

// dateLayouts are tried in order; values without a zone are taken as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 2 15:04:05 2006 -0700",
	"02 Jan 2006 at 03:04 PM",
}

// ParseDate interprets a declared date value.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v (%T)", v, v)
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		parts := make([]string, 0, len(s))
		for _, p := range s {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
