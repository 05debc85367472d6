package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    Category
	}{
		{"bombardment", "Heavy bombardment reported near Lankien", CategoryBombardment},
		{"shelling", "Sporadic shelling along the eastern road", CategoryBombardment},
		{"looting", "Warehouse looted overnight by armed men", CategoryLooting},
		{"access denial", "Convoy stopped at checkpoint south of town", CategoryAccessDenial},
		{"control change", "The town fell to opposition forces", CategoryControlChange},
		{"health", "Cholera outbreak in Duk County", CategoryHealth},
		{"flood", "Flooding has cut the main supply route", CategoryFlood},
		{"earthquake", "Strong tremor felt across the valley", CategoryEarthquake},
		{"displacement", "Hundreds fled towards the river", CategoryDisplacement},
		{"displacement beats flood", "Thousands fled the floods overnight", CategoryDisplacement},
		{"displacement beats earthquake", "Families evacuated after the earthquake", CategoryDisplacement},
		{"default is displacement", "Situation remains unclear in the area", CategoryDisplacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.segment).Category)
		})
	}
}

func TestClassifyFirstCategoryWins(t *testing.T) {
	// Bombardment precedes health in the rule order, so a segment matching
	// both resolves to bombardment.
	got := Classify("Artillery fire hit the hospital compound")
	assert.Equal(t, CategoryBombardment, got.Category)
}

func TestClassifySeverities(t *testing.T) {
	tests := []struct {
		segment string
		want    Severity
	}{
		{"Massacre reported in the village", SeverityCritical},
		{"Heavy bombardment near the airstrip", SeverityHigh},
		{"Cholera outbreak spreading north", SeverityHigh},
		{"Moderate damage to the clinic roof", SeverityMedium},
		{"Minor scuffle at the distribution point", SeverityLow},
		{"Trucks are moving again", SeverityMedium}, // default
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.segment).Severity, tt.segment)
	}
}

func TestClassifyDate(t *testing.T) {
	assert.Equal(t, "2026-02-03", Classify("Heavy bombardment reported near Lankien on 2026-02-03.").Date)
	assert.Empty(t, Classify("Heavy bombardment reported near Lankien yesterday.").Date)
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Greater(t, SeverityLow.Rank(), Severity("unknown").Rank())
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox{South: 3.0, West: 24.0, North: 13.0, East: 36.0}
	assert.True(t, box.Contains(Coordinate{Lat: 8.28, Lon: 31.6}))
	assert.False(t, box.Contains(Coordinate{Lat: 15.0, Lon: 31.6}))

	grown := box.Expand(5)
	assert.True(t, grown.Contains(Coordinate{Lat: 15.0, Lon: 31.6}))
	assert.False(t, grown.Contains(Coordinate{Lat: 20.0, Lon: 31.6}))
}
