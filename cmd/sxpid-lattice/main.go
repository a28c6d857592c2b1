package main

import (
	"flag"
	"log"
	"os"

	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
)

func main() {
	var (
		n      = flag.Int("n", 2, "Number of sources (1-4)")
		format = flag.String("format", "yaml", "Output format: yaml or json")
	)
	flag.Parse()

	l, err := lattice.Default().Get(*n)
	if err != nil {
		log.Fatalf("build lattice: %v", err)
	}
	doc := lattice.Export(l)

	var out []byte
	switch *format {
	case "yaml":
		out, err = doc.YAML()
	case "json":
		out, err = doc.JSON()
	default:
		log.Fatalf("unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("encode lattice: %v", err)
	}

	if _, err := os.Stdout.Write(out); err != nil {
		log.Fatalf("write: %v", err)
	}
}
