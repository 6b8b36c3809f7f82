// Package titlecase converts between filename slugs ("my_post") and display
// titles ("My Post").
//
// The casing is deliberately naive: only the first letter of each word is
// touched, so "mcdonald" becomes "Mcdonald". ToTitle and ToSlug invert each
// other for slugs made of lowercase ASCII words joined by a single underscore.
package titlecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// SlugSeparator joins words in slug form.
	SlugSeparator = "_"
	// TitleSeparator joins words in title form.
	TitleSeparator = " "
	// SourceExt is the extension of source documents.
	SourceExt = ".md"
	// PageExt is the extension of rendered pages.
	PageExt = ".html"
)

// ToTitle turns a slug into a display title.
func ToTitle(slug string) string {
	words := strings.Split(slug, SlugSeparator)
	for i, w := range words {
		words[i] = mapFirst(w, unicode.ToUpper)
	}
	return strings.Join(words, TitleSeparator)
}

// ToSlug turns a display title back into its slug.
func ToSlug(title string) string {
	words := strings.Split(title, TitleSeparator)
	for i, w := range words {
		words[i] = mapFirst(w, unicode.ToLower)
	}
	return strings.Join(words, SlugSeparator)
}

// StripExt removes the source extension from a filename. Names without the
// extension are returned unchanged.
func StripExt(name string) string {
	return strings.TrimSuffix(name, SourceExt)
}

// PageURL returns the output filename for a slug.
func PageURL(slug string) string {
	return slug + PageExt
}

func mapFirst(word string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 || r == utf8.RuneError {
		return word
	}
	return string(fn(r)) + word[size:]
}
