package listing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Amazon.com : Crunchy Strawberry Slices</title>
<style>.a { color: red }</style></head>
<body>
<input type="hidden" name="ASIN" value="B0STRAW01">
<span id="productTitle">
   Freeze Dried Strawberry Slices, Organic
</span>
<div id="feature-bullets">
  <ul>
    <li><span class="a-list-item"> 100% organic strawberries, freeze-dried </span></li>
    <li><span class="a-list-item">Crunchy   snack for kids</span><script>track()</script></li>
    <li>   </li>
  </ul>
</div>
<div id="productDescription"><p>Sliced and dried at peak ripeness.</p></div>
</body>
</html>`

func TestParseHTML(t *testing.T) {
	l, err := ParseHTML(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if l.Name != "B0STRAW01" {
		t.Errorf("Name = %q, want ASIN", l.Name)
	}

	want := []struct{ name, text string }{
		{UnitTitle, "Freeze Dried Strawberry Slices, Organic"},
		{"bullet_1", "100% organic strawberries, freeze-dried"},
		{"bullet_2", "Crunchy snack for kids"},
		{UnitDescription, "Sliced and dried at peak ripeness."},
	}
	if len(l.Units) != len(want) {
		t.Fatalf("expected %d units, got %+v", len(want), l.Units)
	}
	for i, w := range want {
		if l.Units[i].Name != w.name || l.Units[i].Text != w.text {
			t.Errorf("unit %d = %+v, want %s %q", i, l.Units[i], w.name, w.text)
		}
	}
}

func TestParseHTMLTitleFallback(t *testing.T) {
	l, err := ParseHTML(strings.NewReader("<html><head><title> Strawberry Chips </title></head><body></body></html>"))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	u, ok := l.Unit(UnitTitle)
	if !ok || u.Text != "Strawberry Chips" {
		t.Fatalf("title unit = %+v, %v", u, ok)
	}
}

func TestParseHTMLEmpty(t *testing.T) {
	_, err := ParseHTML(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	data := `{
  "asin": "B0STRAW01",
  "title": "Freeze Dried Strawberry Slices",
  "bullets": ["Organic fruit", "", "No sugar added"],
  "search_terms": "strawberry chips crisps"
}`
	l, err := ParseJSON(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if l.Name != "B0STRAW01" {
		t.Errorf("Name = %q", l.Name)
	}
	names := make([]string, len(l.Units))
	for i, u := range l.Units {
		names[i] = u.Name
	}
	if got := strings.Join(names, ","); got != "title,bullet_1,bullet_3,search_terms" {
		t.Errorf("unit names = %s", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strawberry.json")
	if err := os.WriteFile(path, []byte(`{"title":"Strawberry Slices"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if l.Name != "strawberry" {
		t.Errorf("Name = %q, want file base name", l.Name)
	}

	if _, err := LoadFile(filepath.Join(dir, "listing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "listing.txt")
	if err := os.WriteFile(bad, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
