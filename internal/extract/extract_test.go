package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/levonter/corridor/internal/gazetteer"
)

func testTable() *gazetteer.Table {
	return gazetteer.New([]gazetteer.Entry{
		{Name: "Lankien", Lat: 8.28, Lon: 31.6},
		{Name: "Duk", Lat: 7.7, Lon: 31.3},
		{Name: "Duk County", Lat: 7.7, Lon: 31.3},
		{Name: "Bor", Lat: 6.21, Lon: 31.56},
		{Name: "Unity", Lat: 9.26, Lon: 29.8, Ambiguous: true},
	})
}

func TestExtractGazetteerMatches(t *testing.T) {
	ex := New(testTable())
	got := ex.Extract("Heavy bombardment reported near Lankien on 2026-02-03. Cholera outbreak in Duk County since 2026-01-01.")
	assert.Contains(t, got, "Lankien")
	assert.Contains(t, got, "Duk County")
}

func TestExtractWordBoundary(t *testing.T) {
	ex := New(testTable())
	// "Bor" must not match inside "border" or "Borsholm".
	got := ex.Extract("Tension at the border crossing continues.")
	assert.NotContains(t, got, "Bor")
	assert.Empty(t, got)
}

func TestExtractAmbiguousNeedsPreposition(t *testing.T) {
	ex := New(testTable())

	got := ex.Extract("Community unity remains strong despite the clashes.")
	assert.NotContains(t, got, "unity")

	got = ex.Extract("Clashes were reported in Unity yesterday.")
	assert.Contains(t, got, "Unity")
}

func TestExtractAmbiguousClauseBoundary(t *testing.T) {
	ex := New(testTable())
	// The preposition sits in the previous clause, so it does not license
	// the ambiguous match.
	got := ex.Extract("Trucks arrived in Bor, unity talks collapsed.")
	assert.Contains(t, got, "Bor")
	assert.NotContains(t, got, "unity")
}

func TestExtractCapitalizedSpanScan(t *testing.T) {
	ex := New(testTable())

	got := ex.Extract("Fighting broke out near Motot Province on Tuesday.")
	assert.Contains(t, got, "Motot")

	// Stopword spans are rejected even when capitalized after a preposition.
	got = ex.Extract("Convoy moved from North to the river crossing.")
	assert.Empty(t, got)
}

func TestExtractStripsAdminSuffixes(t *testing.T) {
	ex := New(testTable())
	got := ex.Extract("Displacement continues across Fangak County.")
	assert.Contains(t, got, "Fangak")
}

func TestExtractDedupPreservesFirstCasing(t *testing.T) {
	ex := New(testTable())
	got := ex.Extract("Shelling near Lankien. More shelling at LANKIEN overnight.")

	count := 0
	for _, c := range got {
		if gazetteer.Normalize(c) == "lankien" {
			count++
			assert.Equal(t, "Lankien", c)
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractEmptyText(t *testing.T) {
	ex := New(testTable())
	assert.Empty(t, ex.Extract(""))
	assert.Empty(t, ex.Extract("Nothing to report today."))
}
