package lattice

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

// Coalition is a non-empty set of sources taken jointly, stored as a
// bitmask: bit i set means source i+1 is a member.
type Coalition uint8

// Mask returns the coalition as a source mask.
func (c Coalition) Mask() uint { return uint(c) }

// Size returns the number of member sources.
func (c Coalition) Size() int { return bits.OnesCount8(uint8(c)) }

// SubsetOf reports whether every member of c is also a member of o.
func (c Coalition) SubsetOf(o Coalition) bool { return c&o == c }

// Members returns the 1-based source indices in ascending order.
func (c Coalition) Members() []int {
	out := make([]int, 0, c.Size())
	for i := 0; i < 8; i++ {
		if c&(1<<uint(i)) != 0 {
			out = append(out, i+1)
		}
	}
	return out
}

func (c Coalition) String() string {
	parts := make([]string, 0, c.Size())
	for _, m := range c.Members() {
		parts = append(parts, strconv.Itoa(m))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Antichain is a set of coalitions none of which contains another.
// It is kept sorted by (size, mask) so that equal sets compare equal.
type Antichain []Coalition

// NewAntichain sorts the coalitions and checks the antichain property.
func NewAntichain(cs ...Coalition) (Antichain, error) {
	a := make(Antichain, len(cs))
	copy(a, cs)
	a.sort()
	if !a.valid() {
		return nil, fmt.Errorf("antichain %s: %w", a, internalerr.ErrInvalidInput)
	}
	return a, nil
}

// Union returns the coalition of all sources mentioned in the antichain.
func (a Antichain) Union() Coalition {
	var u Coalition
	for _, c := range a {
		u |= c
	}
	return u
}

// Below reports whether a precedes b in the redundancy order: every
// coalition of b contains some coalition of a.
func (a Antichain) Below(b Antichain) bool {
	for _, y := range b {
		found := false
		for _, x := range a {
			if x.SubsetOf(y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Equal reports whether both antichains hold the same coalitions.
func (a Antichain) Equal(b Antichain) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the antichain as "{{1},{2,3}}".
func (a Antichain) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}

// ParseAntichain parses the String form. Whitespace is ignored and the
// coalitions may appear in any order.
func ParseAntichain(s string) (Antichain, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, fmt.Errorf("parse antichain %q: %w", s, internalerr.ErrInvalidInput)
	}
	body := s[1 : len(s)-1]

	var cs []Coalition
	for len(body) > 0 {
		if body[0] == ',' {
			body = body[1:]
			continue
		}
		if body[0] != '{' {
			return nil, fmt.Errorf("parse antichain %q: %w", s, internalerr.ErrInvalidInput)
		}
		end := strings.IndexByte(body, '}')
		if end < 0 {
			return nil, fmt.Errorf("parse antichain %q: unterminated coalition: %w", s, internalerr.ErrInvalidInput)
		}
		var c Coalition
		for _, f := range strings.Split(body[1:end], ",") {
			idx, err := strconv.Atoi(f)
			if err != nil || idx < 1 || idx > MaxSources {
				return nil, fmt.Errorf("parse antichain %q: bad source %q: %w", s, f, internalerr.ErrInvalidInput)
			}
			c |= 1 << uint(idx-1)
		}
		cs = append(cs, c)
		body = body[end+1:]
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("parse antichain %q: empty: %w", s, internalerr.ErrInvalidInput)
	}
	return NewAntichain(cs...)
}

func (a Antichain) sort() {
	sort.Slice(a, func(i, j int) bool {
		si, sj := a[i].Size(), a[j].Size()
		if si != sj {
			return si < sj
		}
		return a[i] < a[j]
	})
}

func (a Antichain) valid() bool {
	if len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] == 0 {
			return false
		}
		for j := range a {
			if i != j && a[i].SubsetOf(a[j]) {
				return false
			}
		}
	}
	return true
}
