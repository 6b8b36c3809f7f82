package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// LayoutDefaultApplier fills in the conventional directory layout.
type LayoutDefaultApplier struct{}

func (LayoutDefaultApplier) Domain() string { return "layout" }

func (LayoutDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.SourceDir, "src")
	setIfEmpty(&cfg.TemplateDir, "template")
	setIfEmpty(&cfg.StyleDir, "style")
	setIfEmpty(&cfg.OutputDir, "build")
	setIfEmpty(&cfg.PostTemplate, "post.html")
	setIfEmpty(&cfg.IndexTemplate, "index.html")
	return nil
}

// BuildDefaultApplier handles pipeline behaviour defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.Stylesheet, "codehilite.css")
	setIfEmpty(&cfg.HighlightStyle, "gruvbox")

	if len(cfg.DateStrategies) == 0 {
		cfg.DateStrategies = []DateStrategy{DateFromFrontMatter, DateFromGit, DateFromModTime}
	} else {
		// Unknown names are kept verbatim so validation can report them.
		for i, s := range cfg.DateStrategies {
			if n := NormalizeDateStrategy(string(s)); n != "" {
				cfg.DateStrategies[i] = n
			}
		}
	}

	if cfg.Assets == "" {
		cfg.Assets = AssetsCopy
	} else if m := NormalizeAssetMode(string(cfg.Assets)); m != "" {
		cfg.Assets = m
	}
	return nil
}

// CompositeDefaultApplier runs domain appliers in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier chain used by Load.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		LayoutDefaultApplier{},
		BuildDefaultApplier{},
	}}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
