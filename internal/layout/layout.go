// Package layout partitions recognized text fragments into semantic zones and
// reconstructs per-line skill candidates from fragments the recognizer split.
package layout

import (
	"sort"
	"strings"

	"umascan/internal/recognize"
	"umascan/pkg/geometry"
)

// Params holds the geometric thresholds for zone splitting and column
// grouping. All values are tuned against the reference capture scale; there
// is no resolution normalization, so a different layout family needs a retune.
type Params struct {
	// ZoneCutoff is the fraction of image height separating the stat area
	// (above) from the skill area (below).
	ZoneCutoff float64

	// MergeGap is the maximum vertical gap in pixels between the bottom of a
	// group and the top of the next box for them to be considered one visual
	// line. Recognition splits long skill names across boxes; anything closer
	// than this is a continuation.
	MergeGap int
}

// DefaultParams returns thresholds tuned for the reference summary-screen layout.
func DefaultParams() Params {
	return Params{
		ZoneCutoff: 0.45,
		MergeGap:   16,
	}
}

// SplitZones partitions boxes into the stat zone and the skill zone by the
// vertical cutoff. A box on the cutoff line counts as stat. Either zone may
// come back empty; that is the caller's warning to raise, not an error.
func SplitZones(boxes []recognize.TextBox, imageHeight int, p Params) (stat, skill []recognize.TextBox) {
	cutoff := int(p.ZoneCutoff * float64(imageHeight))
	for _, b := range boxes {
		if b.Bounds().CenterY() <= cutoff {
			stat = append(stat, b)
		} else {
			skill = append(skill, b)
		}
	}
	return stat, skill
}

// Candidate is a merged run of boxes belonging to one visual line: the union
// bounding rect and the space-joined text in detection order.
type Candidate struct {
	Rect geometry.RectInt
	Text string
}

// GroupColumns merges skill-zone boxes into per-line candidates and returns
// them in reading order.
//
// The skill area is a two-column list. Boxes are assigned to a column by
// comparing their left edge to the horizontal midpoint of the zone extent,
// sorted by top coordinate within each column, and merged with the previous
// group when the vertical gap is below MergeGap. The two column sequences are
// then interleaved row by row, left before right; a column that runs out of
// rows simply contributes nothing for the missing slots.
func GroupColumns(boxes []recognize.TextBox, p Params) []Candidate {
	if len(boxes) == 0 {
		return nil
	}

	mid := zoneMidpoint(boxes)

	var left, right []recognize.TextBox
	for _, b := range boxes {
		if b.Bounds().X < mid {
			left = append(left, b)
		} else {
			right = append(right, b)
		}
	}

	leftGroups := mergeColumn(left, p.MergeGap)
	rightGroups := mergeColumn(right, p.MergeGap)

	rows := len(leftGroups)
	if len(rightGroups) > rows {
		rows = len(rightGroups)
	}

	ordered := make([]Candidate, 0, len(leftGroups)+len(rightGroups))
	for i := 0; i < rows; i++ {
		if i < len(leftGroups) {
			ordered = append(ordered, leftGroups[i])
		}
		if i < len(rightGroups) {
			ordered = append(ordered, rightGroups[i])
		}
	}
	return ordered
}

// zoneMidpoint returns the horizontal midpoint of the boxes' bounding extent.
func zoneMidpoint(boxes []recognize.TextBox) int {
	extent := boxes[0].Bounds()
	for _, b := range boxes[1:] {
		extent = extent.Union(b.Bounds())
	}
	return extent.X + extent.Width/2
}

// mergeColumn sorts one column's boxes by top coordinate and merges boxes
// whose vertical gap to the previous group is below maxGap.
func mergeColumn(boxes []recognize.TextBox, maxGap int) []Candidate {
	if len(boxes) == 0 {
		return nil
	}

	sorted := make([]recognize.TextBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].Bounds(), sorted[j].Bounds()
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})

	groups := []Candidate{{
		Rect: sorted[0].Bounds(),
		Text: strings.TrimSpace(sorted[0].Text),
	}}
	for _, b := range sorted[1:] {
		rect := b.Bounds()
		last := &groups[len(groups)-1]
		if rect.Y-last.Rect.Bottom() < maxGap {
			last.Rect = last.Rect.Union(rect)
			last.Text = last.Text + " " + strings.TrimSpace(b.Text)
			continue
		}
		groups = append(groups, Candidate{
			Rect: rect,
			Text: strings.TrimSpace(b.Text),
		})
	}
	return groups
}
