package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/sxpid/pkg/sxpid/config"
	"github.com/cognicore/sxpid/pkg/sxpid/store/sqlite"
)

func writeXOR(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "xor.csv")
	if err := os.WriteFile(path, []byte("a,b,t\n0,0,0\n0,1,1\n1,0,1\n1,1,0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunStoresReport(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "runs.db")

	var buf bytes.Buffer
	loader := config.Loader{InputPath: writeXOR(t, tmpDir), Target: "t", DBPath: dbPath}
	if err := run(ctx, loader, options{title: "xor"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}

	var out output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !out.Stored {
		t.Error("Run should be stored")
	}
	if math.Abs(out.MI-1) > 1e-9 || math.Abs(out.Breakdown["h_t"]-1) > 1e-9 {
		t.Errorf("Unexpected mi %f / h_t %f", out.MI, out.Breakdown["h_t"])
	}
	if out.Sources[0] != "a" || out.Derived["alph_t"] != 2 {
		t.Errorf("Unexpected sources %v / derived %v", out.Sources, out.Derived)
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	stored, err := st.GetRun(ctx, out.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if stored.Title != "xor" || len(stored.Nodes) != 4 {
		t.Errorf("Unexpected stored run %+v", stored)
	}
}

func TestRunClosesStoreOnFailure(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "runs.db")

	testCases := []struct {
		name   string
		loader config.Loader
	}{
		{"missing samples file", config.Loader{InputPath: filepath.Join(tmpDir, "none.csv"), Target: "t", DBPath: dbPath}},
		{"missing input", config.Loader{Target: "t", DBPath: dbPath}},
		{"unknown target column", config.Loader{InputPath: writeXOR(t, tmpDir), Target: "zz", DBPath: dbPath}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := run(ctx, tc.loader, options{}, &buf); err == nil {
				t.Fatal("run should fail")
			}
			if buf.Len() != 0 {
				t.Errorf("Failed run should print nothing, got %q", buf.String())
			}
			// the write-ahead log is removed when the last connection closes
			if _, err := os.Stat(dbPath + "-wal"); !os.IsNotExist(err) {
				t.Errorf("Store left open after failure: %v", err)
			}
		})
	}
}
