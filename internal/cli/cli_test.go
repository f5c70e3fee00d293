package cli

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewLogger(t *testing.T) {
	entry, err := NewLogger("test", "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if entry.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v", entry.Logger.GetLevel())
	}
	if _, err := NewLogger("test", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestConfigFlags(t *testing.T) {
	dir := t.TempDir()
	stops := filepath.Join(dir, "stops.yaml")
	if err := os.WriteFile(stops, []byte("terms: [snack]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var cf ConfigFlags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cf.Register(fs)
	if err := fs.Parse([]string{"-stoplist", stops}); err != nil {
		t.Fatal(err)
	}

	comp, err := cf.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !comp.Stoplist.IsStop("snack") {
		t.Error("stoplist flag not applied")
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	LogComponents(logrus.NewEntry(logger), comp)
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry")
	}
	if entry.Data["stopwords"] != 1 {
		t.Errorf("stopwords = %v, want 1", entry.Data["stopwords"])
	}
	words, _ := comp.Taxonomy.Size()
	if words == 0 || entry.Data["taxonomy_words"] != words {
		t.Errorf("taxonomy_words = %v, want %d", entry.Data["taxonomy_words"], words)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "", map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"a": 1`) {
		t.Errorf("unexpected output %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSON(&buf, path, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), `"x"`) {
		t.Errorf("file output = %q, %v", data, err)
	}
}
