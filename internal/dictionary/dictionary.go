// Package dictionary builds the canonical name dictionaries and resolves
// noisy recognized strings against them by approximate matching.
package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/unicode/norm"
)

// Source is the external alias list: opaque identifier to one or more display
// aliases. Entries with zero aliases are ignored. The first alias of an entry
// is its canonical display name.
type Source map[string][]string

// LoadSource reads an alias list from a JSON file of the id -> [aliases] shape.
func LoadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read alias list: %w", err)
	}
	var src Source
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("cannot parse alias list: %w", err)
	}
	return src, nil
}

// AlternateFunc reports whether an identifier names an alternate variant of
// another entry. On a key collision the non-alternate identifier wins. The
// convention is tied to the external numbering scheme, so it is injected
// rather than hardcoded.
type AlternateFunc func(id string) bool

// DefaultAlternate treats six-digit identifiers at or above 900000 as
// alternates, the reserved range the simulator export uses for them.
func DefaultAlternate(id string) bool {
	n, err := strconv.Atoi(id)
	if err != nil {
		return false
	}
	return n >= 900000
}

// DefaultCutoff is the minimum similarity score (0-100) for a fuzzy match to
// be accepted. A score exactly at the cutoff is accepted.
const DefaultCutoff = 80

// Match is one accepted resolution of a candidate string.
type Match struct {
	ID    string
	Name  string // canonical display name
	Score int    // similarity 0-100
}

type entry struct {
	id   string
	name string
}

// Dictionary maps normalized keys to canonical names. It is built once and
// immutable afterward, so it is safe to share across concurrent extractions.
type Dictionary struct {
	entries map[string]entry
	keys    []string // sorted, for deterministic best-match selection
	cutoff  int
}

// Collision records one normalized key claimed by two identifiers and which
// one won.
type Collision struct {
	Key         string
	WinnerID    string
	DiscardedID string
}

// Option adjusts dictionary construction.
type Option func(*builder)

type builder struct {
	alternate AlternateFunc
	cutoff    int
}

// WithAlternate injects the alternate-identifier predicate used to resolve
// key collisions.
func WithAlternate(fn AlternateFunc) Option {
	return func(b *builder) { b.alternate = fn }
}

// WithCutoff overrides the similarity cutoff.
func WithCutoff(cutoff int) Option {
	return func(b *builder) { b.cutoff = cutoff }
}

// New builds a dictionary from an alias source. It fails when the source
// contains no usable aliases, since no matching would ever succeed.
func New(src Source, opts ...Option) (*Dictionary, []Collision, error) {
	b := &builder{alternate: DefaultAlternate, cutoff: DefaultCutoff}
	for _, opt := range opts {
		opt(b)
	}

	ids := make([]string, 0, len(src))
	for id := range src {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make(map[string]entry)
	var collisions []Collision
	for _, id := range ids {
		aliases := src[id]
		if len(aliases) == 0 {
			continue
		}
		display := aliases[0]
		for _, alias := range aliases {
			key := Normalize(alias)
			if key == "" {
				continue
			}
			existing, ok := entries[key]
			if !ok {
				entries[key] = entry{id: id, name: display}
				continue
			}
			if existing.id == id {
				continue
			}
			winner := resolveCollision(existing.id, id, b.alternate)
			loser := existing.id
			if winner == existing.id {
				loser = id
			} else {
				entries[key] = entry{id: id, name: display}
			}
			collisions = append(collisions, Collision{Key: key, WinnerID: winner, DiscardedID: loser})
		}
	}

	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("alias source contains no usable entries")
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &Dictionary{entries: entries, keys: keys, cutoff: b.cutoff}, collisions, nil
}

// resolveCollision prefers the identifier that is not an alternate variant;
// between two of the same kind the smaller identifier wins, so rebuilds are
// deterministic regardless of source order.
func resolveCollision(a, b string, alternate AlternateFunc) string {
	altA, altB := alternate(a), alternate(b)
	if altA != altB {
		if altB {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

// Len returns the number of normalized keys.
func (d *Dictionary) Len() int {
	return len(d.keys)
}

// Cutoff returns the similarity cutoff in effect.
func (d *Dictionary) Cutoff() int {
	return d.cutoff
}

// Names returns the canonical display names, sorted and deduplicated.
func (d *Dictionary) Names() []string {
	seen := make(map[string]bool, len(d.entries))
	var names []string
	for _, e := range d.entries {
		if !seen[e.name] {
			seen[e.name] = true
			names = append(names, e.name)
		}
	}
	sort.Strings(names)
	return names
}

// Lookup returns the exact-key entry for an already-normalized key.
func (d *Dictionary) Lookup(key string) (Match, bool) {
	e, ok := d.entries[key]
	if !ok {
		return Match{}, false
	}
	return Match{ID: e.id, Name: e.name, Score: 100}, true
}

// Resolve matches a raw candidate string against the dictionary. It returns
// the best match and true when its similarity reaches the cutoff; otherwise
// false, meaning the candidate is noise to be discarded, not an error.
func (d *Dictionary) Resolve(candidate string) (Match, bool) {
	cand := Normalize(candidate)
	if cand == "" {
		return Match{}, false
	}

	bestScore := -1
	var best entry
	for _, key := range d.keys {
		score := fuzzy.Ratio(cand, key)
		if score > bestScore {
			bestScore = score
			best = d.entries[key]
		}
	}

	if bestScore < d.cutoff {
		return Match{}, false
	}
	return Match{ID: best.id, Name: best.name, Score: bestScore}, true
}

// Normalize reduces a candidate or alias to its matching key: NFKC fold,
// lower-case, and everything outside alphanumerics and the two marker glyphs
// stripped.
func Normalize(s string) string {
	folded := strings.ToLower(norm.NFKC.String(s))
	var sb strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '○' || r == '◎':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
