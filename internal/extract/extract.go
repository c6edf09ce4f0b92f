// Package extract runs the full screenshot-to-record pipeline: recognized
// text fragments are split into zones, stat values are parsed from the top
// zone, skill candidates are grouped, rank markers detected, and everything
// is resolved against the canonical dictionaries into one Record.
package extract

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"umascan/internal/dictionary"
	"umascan/internal/layout"
	"umascan/internal/marker"
	"umascan/internal/recognize"
)

// Stats are the five attribute values read from the stat row. A field is a
// bare decimal string, or empty when the value could not be read — never a
// zero standing in for "unknown".
type Stats struct {
	Speed   string
	Stamina string
	Power   string
	Guts    string
	Wit     string
}

// Record is the extraction result for one screenshot: the stat fields, the
// ordered deduplicated canonical skill names, and the resolved runner name
// (empty when unresolved).
type Record struct {
	Name   string
	Stats  Stats
	Skills []string
}

// SkillList renders the skills pipe-delimited, the form the tabular store and
// the simulator glue consume.
func (r *Record) SkillList() string {
	return strings.Join(r.Skills, "|")
}

// Counters tally the non-fatal conditions met while extracting, so a batch
// run can report partial-success statistics without stopping.
type Counters struct {
	Images           int
	EmptyStatZone    int
	EmptySkillZone   int
	NoNumerals       int
	NoMarker         int
	BelowCutoff      int
	DuplicateSkills  int
	EmptySkillLists  int
	UnresolvedRunner int
}

// Params bundles the tuned thresholds of every pipeline stage.
type Params struct {
	Layout       layout.Params
	Marker       marker.Params
	RowTolerance int // max vertical distance from the reference stat row
}

// DefaultParams returns the thresholds tuned for the reference capture scale.
func DefaultParams() Params {
	return Params{
		Layout:       layout.DefaultParams(),
		Marker:       marker.DefaultParams(),
		RowTolerance: 30,
	}
}

// Extractor ties the collaborators together. The dictionaries are immutable
// and may be shared; the recognizer is typically a single Tesseract client,
// so one Extractor must not be used from multiple goroutines at once.
type Extractor struct {
	rec     recognize.Recognizer
	det     marker.Detector
	skills  *dictionary.Dictionary
	runners *dictionary.Dictionary // optional; nil disables name resolution
	params  Params
	log     *slog.Logger

	counters Counters
}

// New creates an extractor. The skill dictionary is required; the runner
// dictionary may be nil, in which case the name field is always empty.
func New(rec recognize.Recognizer, det marker.Detector, skills, runners *dictionary.Dictionary, params Params, log *slog.Logger) (*Extractor, error) {
	if rec == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if skills == nil {
		return nil, fmt.Errorf("skill dictionary is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		rec:     rec,
		det:     det,
		skills:  skills,
		runners: runners,
		params:  params,
		log:     log,
	}, nil
}

// Counters returns a snapshot of the cumulative non-fatal condition tallies.
func (e *Extractor) Counters() Counters {
	return e.counters
}

// Extract processes one screenshot start to finish. The only fatal condition
// is the recognizer failing; everything downstream degrades to blank fields
// and warnings.
func (e *Extractor) Extract(img image.Image) (*Record, error) {
	boxes, err := e.rec.Recognize(img)
	if err != nil {
		return nil, fmt.Errorf("text recognition failed: %w", err)
	}
	e.counters.Images++

	for _, b := range boxes {
		e.log.Debug("text box", "text", b.Text, "confidence", b.Confidence)
	}

	statBoxes, skillBoxes := layout.SplitZones(boxes, img.Bounds().Dy(), e.params.Layout)
	if len(statBoxes) == 0 {
		e.counters.EmptyStatZone++
		e.log.Warn("stat zone is empty")
	}
	if len(skillBoxes) == 0 {
		e.counters.EmptySkillZone++
		e.log.Warn("skill zone is empty")
	}

	rec := &Record{}
	rec.Stats = e.parseStats(statBoxes)
	rec.Skills = e.resolveSkills(img, skillBoxes)
	rec.Name = e.resolveRunner(statBoxes)

	return rec, nil
}

// numeralRe matches a bare 3-4 digit stat value.
var numeralRe = regexp.MustCompile(`^\d{3,4}$`)

// parseStats finds the stat row and assigns its values left to right to the
// five attributes. Fewer than five values leaves the tail blank; none at all
// leaves everything blank.
func (e *Extractor) parseStats(boxes []recognize.TextBox) Stats {
	var numerals []recognize.TextBox
	for _, b := range boxes {
		if numeralRe.MatchString(strings.TrimSpace(b.Text)) {
			numerals = append(numerals, b)
		}
	}
	if len(numerals) == 0 {
		e.counters.NoNumerals++
		e.log.Warn("no numeric tokens found, stat fields left blank")
		return Stats{}
	}

	sort.SliceStable(numerals, func(i, j int) bool {
		bi, bj := numerals[i].Bounds(), numerals[j].Bounds()
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})

	// The topmost numeral anchors the stat row; minor vertical misalignment
	// from recognition is absorbed by the tolerance.
	ref := numerals[0].Bounds().Y
	var row []recognize.TextBox
	for _, b := range numerals {
		dy := b.Bounds().Y - ref
		if dy < 0 {
			dy = -dy
		}
		if dy <= e.params.RowTolerance {
			row = append(row, b)
		}
	}

	sort.SliceStable(row, func(i, j int) bool {
		return row[i].Bounds().X < row[j].Bounds().X
	})

	values := make([]string, 5)
	for i := 0; i < len(row) && i < 5; i++ {
		values[i] = strings.TrimSpace(row[i].Text)
	}
	return Stats{
		Speed:   values[0],
		Stamina: values[1],
		Power:   values[2],
		Guts:    values[3],
		Wit:     values[4],
	}
}

// resolveSkills groups the skill zone into candidates, attaches a rank marker
// where one is detected, and resolves each candidate to a canonical name.
// First reading-order occurrence of a name wins; later duplicates are dropped.
func (e *Extractor) resolveSkills(img image.Image, boxes []recognize.TextBox) []string {
	candidates := layout.GroupColumns(boxes, e.params.Layout)

	var skills []string
	seen := make(map[string]bool)
	for _, cand := range candidates {
		text := cand.Text
		if e.det != nil {
			glyph, found := marker.Find(img, cand.Rect, e.det, e.params.Marker)
			if !found {
				e.counters.NoMarker++
			} else if !strings.Contains(text, glyph) {
				text = text + " " + glyph
			}
		}

		m, ok := e.skills.Resolve(text)
		if !ok {
			e.counters.BelowCutoff++
			e.log.Warn("candidate below match cutoff, discarded", "text", text)
			continue
		}
		if seen[m.Name] {
			e.counters.DuplicateSkills++
			continue
		}
		seen[m.Name] = true
		skills = append(skills, m.Name)
		e.log.Debug("skill resolved", "candidate", text, "name", m.Name, "score", m.Score)
	}

	if len(candidates) > 0 && len(skills) == 0 {
		e.counters.EmptySkillLists++
		e.log.Warn("no skill candidate met the match cutoff")
	}
	return skills
}

// resolveRunner builds the character-name candidate from the non-numeric stat
// zone text, in reading order, and resolves it against the runner dictionary.
func (e *Extractor) resolveRunner(boxes []recognize.TextBox) string {
	if e.runners == nil {
		return ""
	}

	var nameBoxes []recognize.TextBox
	for _, b := range boxes {
		if !numeralRe.MatchString(strings.TrimSpace(b.Text)) {
			nameBoxes = append(nameBoxes, b)
		}
	}
	if len(nameBoxes) == 0 {
		e.counters.UnresolvedRunner++
		return ""
	}

	sort.SliceStable(nameBoxes, func(i, j int) bool {
		bi, bj := nameBoxes[i].Bounds(), nameBoxes[j].Bounds()
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})

	// The runner name sits on the topmost text line of the summary header;
	// lower rows are attribute labels and UI chrome.
	ref := nameBoxes[0].Bounds().Y
	var parts []string
	for _, b := range nameBoxes {
		if b.Bounds().Y-ref <= e.params.RowTolerance {
			parts = append(parts, b.Text)
		}
	}

	m, ok := e.runners.Resolve(strings.Join(parts, " "))
	if !ok {
		e.counters.UnresolvedRunner++
		e.log.Warn("runner name unresolved")
		return ""
	}
	return m.Name
}
