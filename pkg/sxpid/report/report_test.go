package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sxpid/pkg/sxpid"
)

func xorResult(t *testing.T) *sxpid.Result {
	t.Helper()
	res, err := sxpid.Estimate(
		[]sxpid.Variable{sxpid.Vector([]int{0, 0, 1, 1}), sxpid.Vector([]int{0, 1, 0, 1})},
		sxpid.Vector([]int{0, 1, 1, 0}),
		sxpid.DefaultSettings(),
	)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	return res
}

func TestBuildXORCard(t *testing.T) {
	card := New().Build("xor", xorResult(t), []string{"x", "y"})

	if _, err := ulid.Parse(card.ID); err != nil {
		t.Errorf("Card ID should be a ULID: %v", err)
	}
	if len(card.Nodes) != 4 {
		t.Fatalf("Expected 4 nodes, got %d", len(card.Nodes))
	}

	shared := math.Log2(4.0/3.0) - 1
	want := map[string]float64{
		"mi":         1,
		"redundancy": shared,
		"unique_1":   -shared,
		"unique_2":   -shared,
		"synergy":    math.Log2(4.0 / 3.0),
		"mi_s1":      0,
		"mi_s2":      0,
		"h_t":        1,
	}
	for k, v := range want {
		if got, ok := card.Breakdown[k]; !ok || math.Abs(got-v) > 1e-9 {
			t.Errorf("Breakdown[%s] = %f, want %f", k, got, v)
		}
	}

	if len(card.Bullets) != 4 {
		t.Fatalf("Expected 4 bullets, got %v", card.Bullets)
	}
	found := false
	for _, b := range card.Bullets[:3] {
		found = found || strings.HasPrefix(b, "{{x},{y}}: -0.5850")
	}
	if !found {
		t.Errorf("Shared atom should be listed by source name among the largest, got %v", card.Bullets)
	}
	if !strings.HasPrefix(card.Bullets[3], "{{x,y}}: 0.4150") {
		t.Errorf("Synergy should come last, got %q", card.Bullets[3])
	}
	if card.Alphabets["alph_t"] != 2 || card.Samples != 4 {
		t.Errorf("Unexpected metadata %v / %d", card.Alphabets, card.Samples)
	}
}

func TestBuildDefaultNames(t *testing.T) {
	card := New().Build("xor", xorResult(t), []string{"only"})

	if card.Sources[0] != "only" || card.Sources[1] != "s2" {
		t.Errorf("Unexpected source names %v", card.Sources)
	}
}

func TestBuildSingleSource(t *testing.T) {
	res, err := sxpid.Estimate([]sxpid.Variable{sxpid.Vector([]int{0, 1, 0, 1})}, sxpid.Vector([]int{0, 1, 0, 1}), sxpid.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	card := New().Build("copy", res, nil)
	if len(card.Breakdown) != 3 {
		t.Errorf("Single source breakdown should hold mi, mi_s1 and h_t, got %v", card.Breakdown)
	}
	for _, k := range []string{"mi", "mi_s1", "h_t"} {
		if math.Abs(card.Breakdown[k]-1) > 1e-9 {
			t.Errorf("Expected %s = 1 bit, got %f", k, card.Breakdown[k])
		}
	}
	if _, ok := card.Breakdown["synergy"]; ok {
		t.Error("Single source has no synergy term")
	}
}

func TestIDsUniqueAndOrdered(t *testing.T) {
	b := New()
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }
	res := xorResult(t)

	prev := ""
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := b.Build("run", res, nil).ID
		if seen[id] {
			t.Fatalf("Duplicate ID %s", id)
		}
		if id <= prev {
			t.Errorf("IDs should increase within one millisecond: %s after %s", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestCardRun(t *testing.T) {
	card := New().Build("xor", xorResult(t), nil)
	run := card.Run()

	if run.ID != card.ID || run.Sources != 2 || run.Samples != 4 {
		t.Errorf("Unexpected run header %+v", run)
	}
	if math.Abs(run.MI-1) > 1e-9 {
		t.Errorf("Expected MI 1, got %f", run.MI)
	}
	top := run.Nodes[len(run.Nodes)-1]
	if top.Label != "{{1,2}}" || math.Abs(top.SharedInfo-1) > 1e-9 {
		t.Errorf("Unexpected top node %+v", top)
	}
}

func TestBreakdownSourceMI(t *testing.T) {
	// t copies s1 and s2 is noise: 1 bit from s1, nothing from s2
	res, err := sxpid.Estimate(
		[]sxpid.Variable{sxpid.Vector([]int{0, 0, 1, 1}), sxpid.Vector([]int{0, 1, 0, 1})},
		sxpid.Vector([]int{0, 0, 1, 1}),
		sxpid.DefaultSettings(),
	)
	if err != nil {
		t.Fatal(err)
	}

	b := New().Build("copy", res, nil).Breakdown
	want := map[string]float64{"mi_s1": 1, "mi_s2": 0, "h_t": 1, "mi": 1}
	for k, v := range want {
		if math.Abs(b[k]-v) > 1e-9 {
			t.Errorf("Breakdown[%s] = %f, want %f", k, b[k], v)
		}
	}
}
