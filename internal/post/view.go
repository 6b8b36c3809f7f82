package post

// PostView is the data a post page template sees.
type PostView struct {
	Title   string
	URL     string
	Date    string
	ISODate string
	Content string
}

// IndexView is the data the index template sees.
type IndexView struct {
	Posts []PostView
}

// View returns the template data for p.
func (p *Post) View() PostView {
	return PostView{
		Title:   p.Title,
		URL:     p.URL,
		Date:    p.Date.String(),
		ISODate: p.Date.ISO(),
		Content: string(p.HTMLBody),
	}
}

// Map returns the template context with fixed lower-case keys.
func (v PostView) Map() map[string]any {
	return map[string]any{
		"title":    v.Title,
		"url":      v.URL,
		"date":     v.Date,
		"iso_date": v.ISODate,
		"content":  v.Content,
	}
}

// NewIndexView builds the index data from posts in display order.
func NewIndexView(posts []*Post) IndexView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, p.View())
	}
	return IndexView{Posts: views}
}

// Map returns the template context: "posts" is the ordered list and
// "count" its length.
func (v IndexView) Map() map[string]any {
	posts := make([]map[string]any, 0, len(v.Posts))
	for _, p := range v.Posts {
		posts = append(posts, p.Map())
	}
	return map[string]any{
		"posts": posts,
		"count": len(posts),
	}
}
