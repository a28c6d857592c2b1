package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
	"github.com/cognicore/sxpid/pkg/sxpid/store/sqlite"
)

type runSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Sources   int       `json:"sources"`
	Samples   int       `json:"samples"`
	MI        float64   `json:"mi"`
}

func main() {
	var (
		dbPath = flag.String("db", "", "SQLite database (required)")
		id     = flag.String("id", "", "Show a single run")
		limit  = flag.Int("limit", 20, "Maximum runs to list")
		del    = flag.Bool("delete", false, "Delete the run given by --id")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *del && *id == "" {
		log.Fatal("--delete needs --id")
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	switch {
	case *del:
		if err := st.DeleteRun(ctx, *id); err != nil {
			log.Fatalf("delete run: %v", err)
		}
		fmt.Printf("deleted %s\n", *id)

	case *id != "":
		run, err := st.GetRun(ctx, *id)
		if errors.Is(err, internalerr.ErrNotFound) {
			log.Fatalf("run %s not found", *id)
		}
		if err != nil {
			log.Fatalf("get run: %v", err)
		}
		if err := enc.Encode(run); err != nil {
			log.Fatalf("marshal run: %v", err)
		}

	default:
		runs, err := st.ListRuns(ctx, *limit)
		if err != nil {
			log.Fatalf("list runs: %v", err)
		}
		out := make([]runSummary, 0, len(runs))
		for _, r := range runs {
			out = append(out, runSummary{
				ID:        r.ID,
				Title:     r.Title,
				CreatedAt: r.CreatedAt,
				Sources:   r.Sources,
				Samples:   r.Samples,
				MI:        r.MI,
			})
		}
		if err := enc.Encode(out); err != nil {
			log.Fatalf("marshal runs: %v", err)
		}
	}
}
