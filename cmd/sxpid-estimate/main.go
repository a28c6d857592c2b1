package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/sxpid/internal/samples"
	"github.com/cognicore/sxpid/pkg/sxpid/config"
	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
	"github.com/cognicore/sxpid/pkg/sxpid/report"
)

type output struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	MI        float64             `json:"mi"`
	Breakdown map[string]float64  `json:"breakdown"`
	Bullets   []string            `json:"bullets"`
	Nodes     []report.NodeLine   `json:"nodes"`
	Derived   map[string]int      `json:"derived"`
	Sources   []string            `json:"sources"`
	Pointwise []pointwiseEntryOut `json:"pointwise,omitempty"`
	Stored    bool                `json:"stored"`
}

type pointwiseEntryOut struct {
	Realization string             `json:"realization"`
	Prob        float64            `json:"prob"`
	Atoms       map[string]float64 `json:"atoms"`
}

type options struct {
	title     string
	pointwise bool
}

func main() {
	var (
		input     = flag.String("input", "", "Path to CSV or JSONL samples")
		cfgPath   = flag.String("config", "", "Optional: YAML run configuration")
		format    = flag.String("format", "", "Input format: csv or jsonl (default: file extension)")
		target    = flag.String("target", "", "Target column")
		sources   = flag.String("sources", "", "Source columns, e.g. \"a,b;c\" (default: all other CSV columns)")
		dbPath    = flag.String("db", "", "Optional: SQLite database to store the run")
		title     = flag.String("title", "", "Run title (default: input file name)")
		pointwise = flag.Bool("pointwise", false, "Include pointwise atoms in the output")
		verbose   = flag.Bool("verbose", false, "Log solver progress to stderr")
	)
	flag.Parse()

	loader := config.Loader{
		ConfigPath: *cfgPath,
		InputPath:  *input,
		Format:     *format,
		Target:     *target,
		Sources:    samples.ParseSources(*sources),
		DBPath:     *dbPath,
		Verbose:    *verbose,
	}

	// run returns instead of exiting so the store is closed on every path
	if err := run(context.Background(), loader, options{title: *title, pointwise: *pointwise}, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, loader config.Loader, opts options, w io.Writer) error {
	components, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer components.Close()

	if components.InputPath == "" {
		return errors.New("--input required")
	}
	if components.Samples.Target == "" {
		return errors.New("--target required")
	}

	data, err := samples.Load(components.InputPath, components.Samples)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}

	res, err := components.Estimator.Estimate(data.Sources, data.Target)
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}

	title := opts.title
	if title == "" {
		title = components.InputPath
	}
	card := report.New().Build(title, res, data.Names)

	out := output{
		ID:        card.ID,
		Title:     card.Title,
		MI:        res.MutualInformation(),
		Breakdown: card.Breakdown,
		Bullets:   card.Bullets,
		Nodes:     card.Nodes,
		Derived:   res.Derived.Map(),
		Sources:   card.Sources,
	}
	if opts.pointwise {
		for _, pw := range res.Pointwise {
			entry := pointwiseEntryOut{
				Realization: pw.Realization.Key(),
				Prob:        pw.Prob,
				Atoms:       make(map[string]float64, len(pw.Nodes)),
			}
			for id, v := range pw.Nodes {
				entry.Atoms[res.Lattice.Label(lattice.NodeID(id))] = v.Atom.Info
			}
			out.Pointwise = append(out.Pointwise, entry)
		}
	}

	if components.Store != nil {
		if err := components.Store.SaveRun(ctx, card.Run()); err != nil {
			log.Printf("store run %s: %v", card.ID, err)
		} else {
			out.Stored = true
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return nil
}
