package config

import (
	"fmt"

	"github.com/cognicore/keyroot/pkg/keyroot/lexicon"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
	"github.com/cognicore/keyroot/pkg/keyroot/stoplist"
	"github.com/cognicore/keyroot/pkg/keyroot/taxonomy"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	StoplistPath string
	TaxonomyPath string
	LexiconPath  string
	SettingsPath string

	// SkipEnv disables KEYROOT_* overrides.
	SkipEnv bool
}

// Components holds all loaded configuration components
type Components struct {
	Normalizer *normalize.Normalizer
	Lexicon    *lexicon.Lexicon
	Stoplist   *stoplist.Manager
	Taxonomy   *taxonomy.Taxonomy
	Settings   Settings
}

// Load reads all configuration files and returns initialized components.
// Empty paths fall back to the built-in stoplist, taxonomy and settings.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Normalizer: normalize.New()}

	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = stoplist.NewManager(sl.Terms)
		if sl.IncludeBuiltin {
			for _, term := range stoplist.Builtin {
				comp.Stoplist.Add(term)
			}
		}
	} else {
		comp.Stoplist = stoplist.Default()
	}

	if l.TaxonomyPath != "" {
		taxConfig, err := LoadTaxonomy(l.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		comp.Taxonomy, err = taxConfig.Build()
		if err != nil {
			return nil, fmt.Errorf("build taxonomy: %w", err)
		}
	} else {
		comp.Taxonomy = taxonomy.Default()
	}

	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
		comp.Normalizer.SetLexicon(lex)
	}

	comp.Settings = DefaultSettings()
	if l.SettingsPath != "" {
		s, err := LoadSettings(l.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		comp.Settings = s
	}
	if !l.SkipEnv {
		comp.Settings.ApplyEnv()
	}
	if err := comp.Settings.Validate(); err != nil {
		return nil, err
	}

	return comp, nil
}
