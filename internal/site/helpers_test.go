package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	"git.home.luguber.info/inful/postbuilder/internal/dates"
)

const (
	testPostTemplate = `<!DOCTYPE html>
<html><head><title>{{title}}</title><link rel="stylesheet" href="style/codehilite.css"></head>
<body><h1>{{title}}</h1><time datetime="{{iso_date}}">{{date}}</time>
{{{content}}}
</body></html>
`
	testIndexTemplate = `<!DOCTYPE html>
<html><head><title>Blog</title></head>
<body><ul>{{#posts}}<li><a href="{{url}}">{{title}}</a> <time>{{date}}</time></li>{{/posts}}</ul></body></html>
`
)

// testSite is a scratch blog directory with the conventional layout.
type testSite struct {
	t    *testing.T
	root string
	cfg  *config.Config
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"src", "template", "style"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o750))
	}
	s := &testSite{t: t, root: root}
	s.write("template/post.html", testPostTemplate)
	s.write("template/index.html", testIndexTemplate)
	s.write("style/main.css", "body { margin: 0 }\n")

	cfg := config.Default()
	cfg.Root = root
	s.cfg = cfg
	return s
}

func (s *testSite) path(rel string) string { return filepath.Join(s.root, rel) }

func (s *testSite) write(rel, body string) {
	s.t.Helper()
	p := s.path(rel)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(s.t, os.WriteFile(p, []byte(body), 0o600))
}

// post writes src/<name> with the given modification time.
func (s *testSite) post(name, body string, mtime time.Time) {
	s.t.Helper()
	s.write(filepath.Join("src", name), body)
	require.NoError(s.t, os.Chtimes(s.path(filepath.Join("src", name)), mtime, mtime))
}

func (s *testSite) read(rel string) string {
	s.t.Helper()
	data, err := os.ReadFile(s.path(rel))
	require.NoError(s.t, err)
	return string(data)
}

// builder uses front matter and mtime only so tests do not depend on any
// repository surrounding the temp dir.
func (s *testSite) builder(opts ...Option) *Builder {
	opts = append([]Option{WithResolver(dates.New(dates.FrontMatter{}, dates.ModTime{}))}, opts...)
	return NewBuilder(s.cfg, opts...)
}

func (s *testSite) build(opts ...Option) (*Builder, *BuildReport, error) {
	s.t.Helper()
	b := s.builder(opts...)
	report, err := b.Build(context.Background())
	return b, report, err
}

// indexLinks returns the href of every anchor in the index page, in
// document order.
func indexLinks(t *testing.T, page string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					links = append(links, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// elementText returns the text of the first element named tag.
func elementText(t *testing.T, page, tag string) string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if f := find(c); f != nil {
				return f
			}
		}
		return nil
	}
	n := find(doc)
	require.NotNil(t, n, "no <%s> element", tag)
	var sb strings.Builder
	var text func(*html.Node)
	text = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			text(c)
		}
	}
	text(n)
	return sb.String()
}

// snapshot reads every regular file under dir keyed by relative path.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	require.NoError(t, filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		files[rel] = string(data)
		return nil
	}))
	return files
}
