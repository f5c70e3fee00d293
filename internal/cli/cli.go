// Package cli holds flag and logging setup shared by the commands.
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/keyroot/pkg/keyroot/config"
)

// NewLogger returns a text logger on stderr tagged with the service name.
func NewLogger(service, level string) (*logrus.Entry, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(lvl)
	return logger.WithField("service", service), nil
}

// ConfigFlags are the configuration file flags every command accepts.
type ConfigFlags struct {
	Stoplist string
	Taxonomy string
	Lexicon  string
	Settings string
}

// Register adds the flags to fs.
func (c *ConfigFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.Stoplist, "stoplist", "", "Stoplist YAML file (default: built-in list)")
	fs.StringVar(&c.Taxonomy, "taxonomy", "", "Taxonomy YAML file (default: built-in word lists)")
	fs.StringVar(&c.Lexicon, "lexicon", "", "Optional synonym lexicon YAML file")
	fs.StringVar(&c.Settings, "settings", "", "Settings YAML file (default: built-in settings)")
}

// Load reads the configured files.
func (c *ConfigFlags) Load() (*config.Components, error) {
	loader := config.Loader{
		StoplistPath: c.Stoplist,
		TaxonomyPath: c.Taxonomy,
		LexiconPath:  c.Lexicon,
		SettingsPath: c.Settings,
	}
	return loader.Load()
}

// LogComponents logs the size of the loaded configuration at debug level.
func LogComponents(log *logrus.Entry, comp *config.Components) {
	words, labels := comp.Taxonomy.Size()
	log.WithFields(logrus.Fields{
		"stopwords":       comp.Stoplist.Len(),
		"taxonomy_words":  words,
		"taxonomy_labels": labels,
		"lexicon":         comp.Lexicon != nil,
		"max_distance":    comp.Settings.Match.MaxDistance,
		"min_len":         comp.Settings.Reconcile.MinLen,
		"max_len":         comp.Settings.Reconcile.MaxLen,
	}).Debug("configuration loaded")
}

// WriteJSON writes v as indented JSON to path, or to w when path is empty.
func WriteJSON(w io.Writer, path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	out = append(out, '\n')
	if path == "" {
		_, err = w.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
