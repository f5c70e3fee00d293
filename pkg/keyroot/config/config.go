package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/taxonomy"
)

// Taxonomy represents the taxonomy configuration
type Taxonomy struct {
	// IncludeDefaults seeds the built-in word lists before applying this file.
	IncludeDefaults bool                `yaml:"include_defaults"`
	Categories      map[string][]string `yaml:"categories"`
	Brands          []string            `yaml:"brands"`
	Weights         map[string]float64  `yaml:"weights"`
	// Labels holds token categories produced by an external categorizer.
	Labels         map[string]string `yaml:"labels"`
	BrandHeuristic *bool             `yaml:"brand_heuristic"`
}

// LoadTaxonomy loads taxonomy from a YAML file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, err
	}

	return &tax, nil
}

// Build validates the configuration and constructs a taxonomy.
// Unknown category names in any section are rejected.
func (t *Taxonomy) Build() (*taxonomy.Taxonomy, error) {
	tax := taxonomy.New()
	if t.IncludeDefaults {
		tax = taxonomy.Default()
	}

	for name, words := range t.Categories {
		c, err := taxonomy.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("categories: %w", err)
		}
		if err := tax.AddWords(c, words); err != nil {
			return nil, err
		}
	}
	if err := tax.AddWords(taxonomy.Brand, t.Brands); err != nil {
		return nil, err
	}
	for name, w := range t.Weights {
		c, err := taxonomy.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
		if err := tax.SetWeight(c, w); err != nil {
			return nil, err
		}
	}
	for token, label := range t.Labels {
		if err := tax.SetLabel(token, label); err != nil {
			return nil, fmt.Errorf("labels: %w", err)
		}
	}
	if t.BrandHeuristic != nil {
		tax.SetBrandHeuristic(*t.BrandHeuristic)
	}
	return tax, nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	IncludeBuiltin bool     `yaml:"include_builtin"`
	Terms          []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Settings holds the tunable parameters of the pipeline.
type Settings struct {
	Match     MatchSettings     `yaml:"match"`
	Reconcile ReconcileSettings `yaml:"reconcile"`
	Roots     RootSettings      `yaml:"roots"`
}

// MatchSettings configures the content matcher.
type MatchSettings struct {
	MaxDistance int `yaml:"max_distance"`
}

// ReconcileSettings configures the title reconciler.
type ReconcileSettings struct {
	MinLen    int    `yaml:"min_len"`
	MaxLen    int    `yaml:"max_len"`
	Separator string `yaml:"separator"`
}

// RootSettings configures root extraction reporting.
type RootSettings struct {
	TopN int `yaml:"top_n"`
}

// DefaultSettings returns the built-in parameters: a 50 character
// sub-phrase window and a 150–200 character title window.
func DefaultSettings() Settings {
	return Settings{
		Match:     MatchSettings{MaxDistance: 50},
		Reconcile: ReconcileSettings{MinLen: 150, MaxLen: 200, Separator: " "},
		Roots:     RootSettings{TopN: 30},
	}
}

// LoadSettings reads a settings file over the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// ApplyEnv overrides settings from KEYROOT_* environment variables.
func (s *Settings) ApplyEnv() {
	s.Match.MaxDistance = GetIntEnv("KEYROOT_MAX_DISTANCE", s.Match.MaxDistance)
	s.Reconcile.MinLen = GetIntEnv("KEYROOT_MIN_LEN", s.Reconcile.MinLen)
	s.Reconcile.MaxLen = GetIntEnv("KEYROOT_MAX_LEN", s.Reconcile.MaxLen)
	s.Reconcile.Separator = GetStringEnv("KEYROOT_SEPARATOR", s.Reconcile.Separator)
	s.Roots.TopN = GetIntEnv("KEYROOT_TOP_N", s.Roots.TopN)
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	switch {
	case s.Match.MaxDistance <= 0:
		return fmt.Errorf("%w: match.max_distance must be positive", internalerr.ErrInvalidConfig)
	case s.Reconcile.MinLen < 0 || s.Reconcile.MaxLen < 0:
		return fmt.Errorf("%w: reconcile lengths must be non-negative", internalerr.ErrInvalidConfig)
	case s.Reconcile.MaxLen > 0 && s.Reconcile.MinLen > s.Reconcile.MaxLen:
		return fmt.Errorf("%w: reconcile.min_len %d exceeds max_len %d",
			internalerr.ErrInvalidConfig, s.Reconcile.MinLen, s.Reconcile.MaxLen)
	case s.Roots.TopN < 0:
		return fmt.Errorf("%w: roots.top_n must be non-negative", internalerr.ErrInvalidConfig)
	}
	return nil
}
