package config

import (
	"errors"
	"fmt"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/postbuilder/internal/markdown"
)

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.TemplateDir, validation.Required),
		validation.Field(&c.StyleDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required, validation.By(c.distinctOutput)),
		validation.Field(&c.PostTemplate, validation.Required, validation.By(plainName)),
		validation.Field(&c.IndexTemplate, validation.Required, validation.By(plainName)),
		validation.Field(&c.Stylesheet, validation.Required, validation.By(plainName)),
		validation.Field(&c.HighlightStyle, validation.Required, validation.By(knownStyle)),
		validation.Field(&c.DateStrategies,
			validation.Required,
			validation.Each(validation.In(DateFromFrontMatter, DateFromGit, DateFromModTime)),
			validation.By(noDuplicateStrategies)),
		validation.Field(&c.Assets, validation.Required, validation.In(AssetsCopy, AssetsLink)),
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

// plainName rejects names that would escape their directory.
func plainName(value any) error {
	s, _ := value.(string)
	if s != filepath.Base(s) || s == "." || s == ".." {
		return errors.New("must be a plain file name")
	}
	return nil
}

func knownStyle(value any) error {
	s, _ := value.(string)
	if s != "" && !markdown.HasStyle(s) {
		return fmt.Errorf("unknown highlight style %q", s)
	}
	return nil
}

func (c *Config) distinctOutput(value any) error {
	out, _ := value.(string)
	out = filepath.Clean(out)
	for _, in := range []string{c.SourceDir, c.TemplateDir, c.StyleDir} {
		if in != "" && filepath.Clean(in) == out {
			return fmt.Errorf("must differ from input directory %q", in)
		}
	}
	return nil
}

func noDuplicateStrategies(value any) error {
	list, _ := value.([]DateStrategy)
	seen := make(map[DateStrategy]struct{}, len(list))
	for _, s := range list {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicate strategy %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
