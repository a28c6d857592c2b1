package samples

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/sxpid/pkg/sxpid"
)

func TestReadCSVDefaultSources(t *testing.T) {
	in := "x, y, t\n0,0,0\n0,1,1\n1,0,1\n1,1,0\n"

	data, err := ReadCSV(strings.NewReader(in), Layout{Target: "t"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if len(data.Sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(data.Sources))
	}
	if data.Names[0] != "x" || data.Names[1] != "y" {
		t.Errorf("Unexpected source names %v", data.Names)
	}
	if data.Target.Len() != 4 {
		t.Errorf("Expected 4 samples, got %d", data.Target.Len())
	}
	if got := data.Sources[1].Column(0); got[1] != 1 {
		t.Errorf("Expected y[1]=1, got %v", got)
	}
}

func TestReadCSVMultiColumnSource(t *testing.T) {
	in := "a;b;c;t\n0;1;2;0\n1;1;0;1\n"

	data, err := ReadCSV(strings.NewReader(in), Layout{
		Target:    "t",
		Sources:   [][]string{{"a", "b"}, {"c"}},
		Delimiter: ';',
	})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if data.Sources[0].Width() != 2 {
		t.Errorf("Source 1 should have 2 columns, got %d", data.Sources[0].Width())
	}
	if data.Names[0] != "a+b" {
		t.Errorf("Expected name a+b, got %s", data.Names[0])
	}
}

func TestReadCSVBadValue(t *testing.T) {
	in := "x,t\n0,1\nfoo,0\n"

	_, err := ReadCSV(strings.NewReader(in), Layout{Target: "t"})
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected error at line 3, got %v", err)
	}
}

func TestReadCSVUnknownColumn(t *testing.T) {
	in := "x,t\n0,1\n"

	if _, err := ReadCSV(strings.NewReader(in), Layout{Target: "z"}); err == nil {
		t.Error("Unknown target column should fail")
	}
	if _, err := ReadCSV(strings.NewReader(in), Layout{Target: "t", Sources: [][]string{{"q"}}}); err == nil {
		t.Error("Unknown source column should fail")
	}
}

func TestReadJSONL(t *testing.T) {
	in := `{"x": 0, "y": 1, "t": 1}

{"x": 1, "y": 1, "t": 0}
`

	data, err := ReadJSONL(strings.NewReader(in), Layout{Target: "t", Sources: [][]string{{"x"}, {"y"}}})
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}

	if data.Target.Len() != 2 {
		t.Errorf("Blank lines should be skipped, got %d samples", data.Target.Len())
	}
}

func TestReadJSONLMissingColumn(t *testing.T) {
	in := `{"x": 0, "t": 1}`

	_, err := ReadJSONL(strings.NewReader(in), Layout{Target: "t", Sources: [][]string{{"x"}, {"y"}}})
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Errorf("Expected missing column error, got %v", err)
	}
}

func TestReadJSONLNeedsSources(t *testing.T) {
	if _, err := ReadJSONL(strings.NewReader(`{"t":1}`), Layout{Target: "t"}); err == nil {
		t.Error("JSONL without sources should fail")
	}
}

func TestLoadByExtension(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "xor.csv")
	if err := os.WriteFile(path, []byte("s1,s2,t\n0,0,0\n0,1,1\n1,0,1\n1,1,0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := Load(path, Layout{Target: "t"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, err := sxpid.Estimate(data.Sources, data.Target, sxpid.DefaultSettings())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if mi := res.MutualInformation(); mi < 0.999 || mi > 1.001 {
		t.Errorf("XOR file should carry 1 bit, got %f", mi)
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, Layout{Target: "t"}); err == nil {
		t.Error("Unknown extension should fail")
	}
}

func TestParseSources(t *testing.T) {
	got := ParseSources("a, b; c ;;")
	if len(got) != 2 || len(got[0]) != 2 || got[1][0] != "c" {
		t.Errorf("Unexpected layout %v", got)
	}
}
