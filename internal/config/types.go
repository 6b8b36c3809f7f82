package config

import "strings"

// DateStrategy names one way of deriving a post's publish date.
type DateStrategy string

const (
	// DateFromFrontMatter uses an explicit date declared in the document.
	DateFromFrontMatter DateStrategy = "frontmatter"
	// DateFromGit uses the last commit touching the file.
	DateFromGit DateStrategy = "git"
	// DateFromModTime uses the filesystem modification time.
	DateFromModTime DateStrategy = "mtime"
)

// NormalizeDateStrategy canonicalizes user input; unknown values return "".
func NormalizeDateStrategy(s string) DateStrategy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frontmatter", "front-matter", "front_matter", "meta":
		return DateFromFrontMatter
	case "git", "vcs":
		return DateFromGit
	case "mtime", "modtime", "filesystem":
		return DateFromModTime
	default:
		return ""
	}
}

// AssetMode selects how the style directory is materialized.
type AssetMode string

const (
	AssetsCopy AssetMode = "copy"
	AssetsLink AssetMode = "link"
)

// NormalizeAssetMode canonicalizes user input; unknown values return "".
func NormalizeAssetMode(s string) AssetMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy":
		return AssetsCopy
	case "link", "symlink":
		return AssetsLink
	default:
		return ""
	}
}
