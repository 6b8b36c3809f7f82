package post

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotCompiled is returned when inserting a post without a body or date.
var ErrNotCompiled = errors.New("post is not compiled")

// Collection keeps posts newest first. Posts with the same date keep
// source order (ascending Seq). Safe for concurrent use.
type Collection struct {
	mu    sync.Mutex
	posts []*Post
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Insert places p at its ordered position.
func (c *Collection) Insert(p *Post) error {
	if !p.Compiled() {
		name := "<nil>"
		if p != nil {
			name = p.Source
		}
		return fmt.Errorf("%w: %s", ErrNotCompiled, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := sort.Search(len(c.posts), func(i int) bool {
		return before(p, c.posts[i])
	})
	c.posts = append(c.posts, nil)
	copy(c.posts[i+1:], c.posts[i:])
	c.posts[i] = p
	return nil
}

// before reports whether a sorts ahead of b.
func before(a, b *Post) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.Seq < b.Seq
}

// Posts returns the posts in order. The slice is a copy.
func (c *Collection) Posts() []*Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// Len returns the number of posts.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.posts)
}
