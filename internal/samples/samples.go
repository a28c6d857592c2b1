package samples

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cognicore/sxpid/pkg/sxpid"
)

// Supported input formats
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// Layout names the columns that make up the target and each source.
type Layout struct {
	Format    string
	Target    string
	Sources   [][]string // columns per source; a source may span several
	Delimiter rune
}

// Data is a loaded sample set.
type Data struct {
	Sources []sxpid.Variable
	Target  sxpid.Variable
	Names   []string // one label per source, columns joined with "+"
}

// Load reads samples from a CSV or JSONL file. The format defaults to the
// file extension.
func Load(path string, in Layout) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples %s: %w", path, err)
	}
	defer f.Close()

	format := in.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var data *Data
	switch format {
	case FormatCSV:
		data, err = ReadCSV(f, in)
	case FormatJSONL, "ndjson":
		data, err = ReadJSONL(f, in)
	default:
		return nil, fmt.Errorf("samples %s: unknown format %q", path, format)
	}
	if err != nil {
		return nil, fmt.Errorf("samples %s: %w", path, err)
	}
	return data, nil
}

// ReadCSV reads a CSV table with a header row. Without explicit sources,
// every column except the target becomes a one-column source.
func ReadCSV(r io.Reader, in Layout) (*Data, error) {
	cr := csv.NewReader(r)
	if in.Delimiter != 0 {
		cr.Comma = in.Delimiter
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	layout, err := resolve(in, header)
	if err != nil {
		return nil, err
	}
	cols := make([][]int, len(layout.Sources))
	for i, names := range layout.Sources {
		for _, name := range names {
			j, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("unknown column %q", name)
			}
			cols[i] = append(cols[i], j)
		}
	}
	tcol, ok := index[layout.Target]
	if !ok {
		return nil, fmt.Errorf("unknown target column %q", layout.Target)
	}

	data := newData(layout)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		value := func(j int) (int, error) {
			v, err := strconv.Atoi(strings.TrimSpace(rec[j]))
			if err != nil {
				return 0, fmt.Errorf("line %d column %q: %w", line, header[j], err)
			}
			return v, nil
		}

		t, err := value(tcol)
		if err != nil {
			return nil, err
		}
		data.Target = append(data.Target, []int{t})
		for i, js := range cols {
			row := make([]int, len(js))
			for k, j := range js {
				if row[k], err = value(j); err != nil {
					return nil, err
				}
			}
			data.Sources[i] = append(data.Sources[i], row)
		}
	}

	if data.Target.Len() == 0 {
		return nil, fmt.Errorf("no samples")
	}
	return data, nil
}

// ReadJSONL reads one JSON object per line mapping column names to integer
// codes. Sources must be named explicitly.
func ReadJSONL(r io.Reader, in Layout) (*Data, error) {
	if len(in.Sources) == 0 {
		return nil, fmt.Errorf("jsonl input needs explicit source columns")
	}
	layout, err := resolve(in, nil)
	if err != nil {
		return nil, err
	}

	data := newData(layout)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var obj map[string]int
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		lookup := func(name string) (int, error) {
			v, ok := obj[name]
			if !ok {
				return 0, fmt.Errorf("line %d: missing column %q", line, name)
			}
			return v, nil
		}

		t, err := lookup(layout.Target)
		if err != nil {
			return nil, err
		}
		data.Target = append(data.Target, []int{t})
		for i, names := range layout.Sources {
			row := make([]int, len(names))
			for k, name := range names {
				if row[k], err = lookup(name); err != nil {
					return nil, err
				}
			}
			data.Sources[i] = append(data.Sources[i], row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if data.Target.Len() == 0 {
		return nil, fmt.Errorf("no samples")
	}
	return data, nil
}

// resolve fills in default sources from the header.
func resolve(in Layout, header []string) (Layout, error) {
	if in.Target == "" {
		return in, fmt.Errorf("target column not set")
	}
	if len(in.Sources) > 0 {
		return in, nil
	}
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name != in.Target {
			in.Sources = append(in.Sources, []string{name})
		}
	}
	if len(in.Sources) == 0 {
		return in, fmt.Errorf("no source columns")
	}
	return in, nil
}

func newData(layout Layout) *Data {
	data := &Data{
		Sources: make([]sxpid.Variable, len(layout.Sources)),
		Names:   make([]string, len(layout.Sources)),
	}
	for i, names := range layout.Sources {
		data.Names[i] = strings.Join(names, "+")
	}
	return data
}

// ParseSources parses a source layout such as "a,b;c": sources separated
// by ';', columns of one source by ','.
func ParseSources(s string) [][]string {
	var out [][]string
	for _, group := range strings.Split(s, ";") {
		var cols []string
		for _, c := range strings.Split(group, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			out = append(out, cols)
		}
	}
	return out
}
