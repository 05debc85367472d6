// Package assemble turns classified brief segments and resolved place
// names into deduplicated draft incidents.
package assemble

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/gazetteer"
)

// minSegmentLen discards fragments too short to carry an incident.
const minSegmentLen = 10

// dedupDegrees treats two drafts within this many degrees on both axes
// (about a kilometer) and with the same category as one incident mentioned
// twice.
const dedupDegrees = 0.01

// Place is an extracted place name with its resolution result. Coord is
// nil when the resolver could not place the name with confidence; order
// matters, since the first place matching a segment wins.
type Place struct {
	Name  string
	Coord *domain.Coordinate
}

var segmentSplitRE = regexp.MustCompile(`[.;!\n]`)

// Drafts builds draft incidents from a brief, also reporting how many
// candidates were discarded as repeated mentions. Each sentence-like
// segment maps to at most one place; segments mentioning no known place
// are dropped silently. Unresolved places still produce a draft, flagged
// uncertain, so a reviewer sees the mention rather than losing it.
func Drafts(brief domain.Brief, places []Place) (drafts []domain.Draft, deduped int) {
	for _, segment := range segmentSplitRE.Split(brief.Text, -1) {
		segment = strings.TrimSpace(segment)
		if len(segment) < minSegmentLen {
			continue
		}

		place, found := firstPlaceIn(segment, places)
		if !found {
			continue
		}

		cls := domain.Classify(segment)
		if isDuplicate(drafts, place.Coord, cls.Category) {
			deduped++
			continue
		}

		d := domain.Draft{
			OperationID:       brief.OperationID,
			BriefID:           brief.ID,
			SuggestedTitle:    titleFor(cls.Category, place.Name),
			SuggestedDesc:     segment,
			SuggestedCategory: cls.Category,
			SuggestedSeverity: cls.Severity,
			SuggestedDate:     cls.Date,
			SuggestedCoord:    place.Coord,
			LocationName:      place.Name,
		}
		if place.Coord == nil {
			d.UncertaintyFlag = true
			d.UncertaintyNote = "no location match"
		}
		drafts = append(drafts, d)
	}
	return drafts, deduped
}

// firstPlaceIn returns the first place whose name appears as a substring
// of the lowercased segment.
func firstPlaceIn(segment string, places []Place) (Place, bool) {
	lower := strings.ToLower(segment)
	for _, p := range places {
		key := gazetteer.Normalize(p.Name)
		if key != "" && strings.Contains(lower, key) {
			return p, true
		}
	}
	return Place{}, false
}

// isDuplicate reports whether an earlier draft in the batch already covers
// the same category within dedupDegrees of the coordinate.
func isDuplicate(drafts []domain.Draft, coord *domain.Coordinate, cat domain.Category) bool {
	if coord == nil {
		return false
	}
	for _, d := range drafts {
		if d.SuggestedCategory != cat || d.SuggestedCoord == nil {
			continue
		}
		if math.Abs(d.SuggestedCoord.Lat-coord.Lat) <= dedupDegrees &&
			math.Abs(d.SuggestedCoord.Lon-coord.Lon) <= dedupDegrees {
			return true
		}
	}
	return false
}

func titleFor(cat domain.Category, place string) string {
	label := strings.ReplaceAll(string(cat), "-", " ")
	label = strings.ToUpper(label[:1]) + label[1:]
	return fmt.Sprintf("%s at %s", label, place)
}
