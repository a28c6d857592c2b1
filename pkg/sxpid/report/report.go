package report

import (
	"crypto/rand"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sxpid/pkg/sxpid"
	"github.com/cognicore/sxpid/pkg/sxpid/info"
	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
	"github.com/cognicore/sxpid/pkg/sxpid/store"
)

// Builder constructs explainable run cards
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new card builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Card summarizes one decomposition
type Card struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	CreatedAt time.Time          `json:"created_at"`
	Bullets   []string           `json:"bullets"`
	Breakdown map[string]float64 `json:"breakdown"`
	Nodes     []NodeLine         `json:"nodes"`
	Samples   int                `json:"samples"`
	Sources   []string           `json:"sources"`
	Alphabets map[string]int     `json:"alphabets"`
}

// NodeLine carries the averaged values of one lattice node
type NodeLine struct {
	ID     int          `json:"id"`
	Label  string       `json:"label"`
	Shared sxpid.Triple `json:"shared"`
	Atom   sxpid.Triple `json:"atom"`
}

// Build creates a card from an estimate. names labels the sources; missing
// names default to s1, s2, ...
func (b *Builder) Build(title string, res *sxpid.Result, names []string) Card {
	b.mu.Lock()
	now := b.now()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	l := res.Lattice
	card := Card{
		ID:        id,
		Title:     title,
		CreatedAt: now,
		Nodes:     make([]NodeLine, l.Len()),
		Samples:   res.Derived.Samples,
		Sources:   make([]string, l.NumSources()),
		Alphabets: res.Derived.Map(),
	}
	for i := range card.Sources {
		if i < len(names) && names[i] != "" {
			card.Sources[i] = names[i]
		} else {
			card.Sources[i] = fmt.Sprintf("s%d", i+1)
		}
	}
	for i, v := range res.Average {
		card.Nodes[i] = NodeLine{
			ID:     i,
			Label:  l.Label(lattice.NodeID(i)),
			Shared: v.Shared,
			Atom:   v.Atom,
		}
	}

	card.Breakdown = breakdown(res)
	card.Bullets = bullets(card.Nodes, card.Sources)
	return card
}

// breakdown totals the atoms into redundancy, unique and synergy where
// those terms are unambiguous, and reports the MI, the MI of each source
// alone (mi_s<i>) and the target entropy (h_t).
func breakdown(res *sxpid.Result) map[string]float64 {
	l := res.Lattice
	out := map[string]float64{
		"mi":  res.MutualInformation(),
		"h_t": info.TargetEntropy(res.PMF),
	}
	for i := 0; i < l.NumSources(); i++ {
		out[fmt.Sprintf("mi_s%d", i+1)] = info.SourceMI(res.PMF, 1<<uint(i))
	}
	if l.NumSources() == 1 {
		return out
	}
	out["redundancy"] = res.Average[l.Bottom()].Atom.Info
	out["synergy"] = res.Average[l.Top()].Atom.Info
	for id := range res.Average {
		ac := l.Nodes[id].Antichain
		if len(ac) == 1 && ac[0].Size() == 1 {
			out[fmt.Sprintf("unique_%d", ac[0].Members()[0])] = res.Average[id].Atom.Info
		}
	}
	return out
}

// bullets lists the nodes by decreasing atom magnitude, skipping zeros
func bullets(nodes []NodeLine, names []string) []string {
	order := make([]NodeLine, len(nodes))
	copy(order, nodes)
	sort.SliceStable(order, func(i, j int) bool {
		return math.Abs(order[i].Atom.Info) > math.Abs(order[j].Atom.Info)
	})

	out := make([]string, 0, len(order))
	for _, n := range order {
		if math.Abs(n.Atom.Info) < 1e-12 {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %.4f bits (+%.4f / -%.4f)",
			rename(n.Label, names), n.Atom.Info, n.Atom.Informative, n.Atom.Misinformative))
	}
	return out
}

// rename replaces source indices in a label with source names
func rename(label string, names []string) string {
	var sb strings.Builder
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= '1' && c <= '9' && int(c-'1') < len(names) {
			sb.WriteString(names[c-'1'])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Run converts the card into a storable run
func (c Card) Run() store.Run {
	r := store.Run{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		Sources:   len(c.Sources),
		Samples:   c.Samples,
		MI:        c.Breakdown["mi"],
		Alphabets: c.Alphabets,
		Bullets:   c.Bullets,
		Nodes:     make([]store.Node, len(c.Nodes)),
	}
	for i, n := range c.Nodes {
		r.Nodes[i] = store.Node{
			ID:          n.ID,
			Label:       n.Label,
			SharedPlus:  n.Shared.Informative,
			SharedMinus: n.Shared.Misinformative,
			SharedInfo:  n.Shared.Info,
			AtomPlus:    n.Atom.Informative,
			AtomMinus:   n.Atom.Misinformative,
			AtomInfo:    n.Atom.Info,
		}
	}
	return r
}
