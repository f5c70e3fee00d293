package research

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
)

const sampleCSV = `Keyword Phrase,Search Volume,Relevancy
freeze dried strawberries,"1,200",0.9
strawberry slices,-,0.5
bad volume row,abc,0.1
,100,0.2
negative volume,-5,0.3
organic chips,300,
`

func quietLoader(strict bool) *Loader {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLoader(strict, logrus.NewEntry(logger))
}

func TestReadCSV(t *testing.T) {
	res, err := quietLoader(false).ReadCSV(strings.NewReader(sampleCSV), ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(res.Records), res.Records)
	}
	first := res.Records[0]
	if first.Phrase != "freeze dried strawberries" || first.Volume() != 1200 || first.Relevancy != 0.9 {
		t.Errorf("unexpected first record %+v", first)
	}
	if res.Records[1].HasVolume() {
		t.Errorf("dash volume should be unknown, got %d", res.Records[1].Volume())
	}
	if res.Records[2].Relevancy != 0 {
		t.Errorf("empty relevancy should be 0, got %v", res.Records[2].Relevancy)
	}

	wantLines := []int{4, 5, 6}
	if len(res.Problems) != len(wantLines) {
		t.Fatalf("expected %d problems, got %v", len(wantLines), res.Problems)
	}
	for i, p := range res.Problems {
		var verr *internalerr.ValidationError
		if !errors.As(p, &verr) {
			t.Fatalf("problem %d is %T, want *ValidationError", i, p)
		}
		if verr.Line != wantLines[i] {
			t.Errorf("problem %d line = %d, want %d (%v)", i, verr.Line, wantLines[i], p)
		}
	}
}

func TestReadCSVStrict(t *testing.T) {
	res, err := quietLoader(true).ReadCSV(strings.NewReader(sampleCSV), ',')
	if err == nil {
		t.Fatal("strict load should fail on invalid rows")
	}
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if len(res.Problems) != 3 {
		t.Errorf("expected 3 problems, got %d", len(res.Problems))
	}
}

func TestReadCSVHeaderAliases(t *testing.T) {
	data := "Search Term\tVolume\tRelevance\nstrawberry chips\t450\t0.7\n"
	res, err := quietLoader(true).ReadCSV(strings.NewReader(data), '\t')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Volume() != 450 || res.Records[0].Relevancy != 0.7 {
		t.Fatalf("unexpected records %+v", res.Records)
	}
}

func TestReadCSVMissingKeywordColumn(t *testing.T) {
	_, err := quietLoader(false).ReadCSV(strings.NewReader("Volume,Relevancy\n10,1\n"), ',')
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = quietLoader(false).ReadCSV(strings.NewReader(""), ',')
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty file, got %v", err)
	}
}

func TestReadJSONL(t *testing.T) {
	data := `{"keyword":"freeze dried strawberries","search_volume":1200,"relevancy":0.9}

{"phrase":"strawberry slices","volume":300}
not json
{"phrase":"broken","search_volume":-1}
`
	res, err := quietLoader(false).ReadJSONL(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", res.Records)
	}
	if res.Records[0].Phrase != "freeze dried strawberries" || res.Records[1].Volume() != 300 {
		t.Errorf("unexpected records %+v", res.Records)
	}

	var lines []int
	for _, p := range res.Problems {
		var verr *internalerr.ValidationError
		if errors.As(p, &verr) {
			lines = append(lines, verr.Line)
		}
	}
	if len(lines) != 2 || lines[0] != 4 || lines[1] != 5 {
		t.Errorf("problem lines = %v, want [4 5]", lines)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "research.csv")
	if err := os.WriteFile(csvPath, []byte("keyword,search volume\nstrawberry,10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := quietLoader(false).LoadFile(csvPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}

	txtPath := filepath.Join(dir, "research.txt")
	if err := os.WriteFile(txtPath, []byte("strawberry"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := quietLoader(false).LoadFile(txtPath); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for .txt, got %v", err)
	}

	if _, err := quietLoader(false).LoadFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
