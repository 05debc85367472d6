package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levonter/corridor/internal/domain"
)

func testBrief(text string) domain.Brief {
	return domain.Brief{ID: "brief-1", OperationID: "op-1", Text: text}
}

func coord(lat, lon float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lon: lon}
}

func TestDraftsScenario(t *testing.T) {
	brief := testBrief("Heavy bombardment reported near Lankien on 2026-02-03. Cholera outbreak in Duk County since 2026-01-01.")
	places := []Place{
		{Name: "Lankien", Coord: coord(8.28, 31.6)},
		{Name: "Duk County", Coord: coord(7.7, 31.3)},
	}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 2)

	first := drafts[0]
	assert.Equal(t, domain.CategoryBombardment, first.SuggestedCategory)
	assert.Equal(t, domain.SeverityHigh, first.SuggestedSeverity)
	assert.Equal(t, "2026-02-03", first.SuggestedDate)
	require.NotNil(t, first.SuggestedCoord)
	assert.InDelta(t, 8.28, first.SuggestedCoord.Lat, 1e-9)
	assert.Equal(t, "Lankien", first.LocationName)
	assert.False(t, first.UncertaintyFlag)
	assert.Equal(t, "op-1", first.OperationID)
	assert.Equal(t, "brief-1", first.BriefID)

	second := drafts[1]
	assert.Equal(t, domain.CategoryHealth, second.SuggestedCategory)
	assert.Equal(t, "2026-01-01", second.SuggestedDate)
	require.NotNil(t, second.SuggestedCoord)
	assert.InDelta(t, 7.7, second.SuggestedCoord.Lat, 1e-9)
}

func TestDraftsDedupSamePlaceSameCategory(t *testing.T) {
	brief := testBrief("Shelling reported near Lankien this morning. Further shelling around Lankien in the afternoon.")
	places := []Place{{Name: "Lankien", Coord: coord(8.28, 31.6)}}

	drafts, deduped := Drafts(brief, places)
	assert.Len(t, drafts, 1)
	assert.Equal(t, 1, deduped)
}

func TestDraftsSamePlaceDifferentCategories(t *testing.T) {
	brief := testBrief("Shelling reported near Lankien this morning. Looting of the market in Lankien afterwards.")
	places := []Place{{Name: "Lankien", Coord: coord(8.28, 31.6)}}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 2)
	assert.Equal(t, domain.CategoryBombardment, drafts[0].SuggestedCategory)
	assert.Equal(t, domain.CategoryLooting, drafts[1].SuggestedCategory)
}

func TestDraftsNearbyCoordinatesDedup(t *testing.T) {
	// Two names resolving within ~1km of each other, same category.
	brief := testBrief("Shelling reported near Lankien today. Shelling also hit Pultruk overnight.")
	places := []Place{
		{Name: "Lankien", Coord: coord(8.28, 31.6)},
		{Name: "Pultruk", Coord: coord(8.285, 31.605)},
	}

	drafts, _ := Drafts(brief, places)
	assert.Len(t, drafts, 1)
}

func TestDraftsUnresolvedPlaceFlagsUncertainty(t *testing.T) {
	brief := testBrief("Roadblock reported outside Motot yesterday evening.")
	places := []Place{{Name: "Motot", Coord: nil}}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].UncertaintyFlag)
	assert.Equal(t, "no location match", drafts[0].UncertaintyNote)
	assert.Nil(t, drafts[0].SuggestedCoord)
	assert.Equal(t, domain.CategoryAccessDenial, drafts[0].SuggestedCategory)
}

func TestDraftsDropsSegmentsWithoutPlaces(t *testing.T) {
	brief := testBrief("The weather is expected to worsen this week. Shelling reported near Lankien.")
	places := []Place{{Name: "Lankien", Coord: coord(8.28, 31.6)}}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Lankien", drafts[0].LocationName)
}

func TestDraftsDropsShortSegments(t *testing.T) {
	brief := testBrief("Lankien. Ok. Calm day reported near Lankien overnight.")
	places := []Place{{Name: "Lankien", Coord: coord(8.28, 31.6)}}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 1)
	assert.Equal(t, domain.SeverityLow, drafts[0].SuggestedSeverity)
}

func TestDraftsFirstPlaceWinsPerSegment(t *testing.T) {
	brief := testBrief("Convoy stopped between Lankien and Waat this morning.")
	places := []Place{
		{Name: "Lankien", Coord: coord(8.28, 31.6)},
		{Name: "Waat", Coord: coord(8.19, 32.09)},
	}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Lankien", drafts[0].LocationName)
}

func TestDraftsTitles(t *testing.T) {
	brief := testBrief("Convoy stopped at checkpoint near Lankien today.")
	places := []Place{{Name: "Lankien", Coord: coord(8.28, 31.6)}}

	drafts, _ := Drafts(brief, places)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Access denial at Lankien", drafts[0].SuggestedTitle)
}

func TestDraftsEmptyInputs(t *testing.T) {
	drafts, deduped := Drafts(testBrief(""), nil)
	assert.Empty(t, drafts)
	assert.Zero(t, deduped)

	drafts, _ = Drafts(testBrief("Shelling near Lankien."), nil)
	assert.Empty(t, drafts)
}
