package store

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levonter/corridor/internal/domain"
)

func newTestStore(t *testing.T) (*Store, domain.Operation) {
	t.Helper()
	s := New()
	op := s.CreateOperation("South Sudan Corridors", domain.SeverityMedium, domain.Region{
		Center: domain.Coordinate{Lat: 7.5, Lon: 30.5},
		Bounds: &domain.BoundingBox{South: 3.0, West: 24.0, North: 13.0, East: 36.0},
	})
	return s, op
}

func pendingDraft(opID, briefID string) domain.Draft {
	coord := domain.Coordinate{Lat: 8.28, Lon: 31.6}
	return domain.Draft{
		OperationID:       opID,
		BriefID:           briefID,
		SuggestedTitle:    "Bombardment near Lankien",
		SuggestedDesc:     "Heavy bombardment reported near Lankien",
		SuggestedCategory: domain.CategoryBombardment,
		SuggestedSeverity: domain.SeverityHigh,
		SuggestedDate:     "2026-02-03",
		SuggestedCoord:    &coord,
		LocationName:      "Lankien",
	}
}

func TestConfirmDraftCreatesIncident(t *testing.T) {
	s, op := newTestStore(t)
	brief, err := s.CreateBrief(op.ID, "Heavy bombardment reported near Lankien", "radio")
	require.NoError(t, err)

	d, err := s.CreateDraft(pendingDraft(op.ID, brief.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.DraftPending, d.Status)

	// Operator nudged the pin slightly before confirming.
	inc, err := s.ConfirmDraft(op.ID, d.ID, 8.29, 31.61)
	require.NoError(t, err)
	assert.Equal(t, "Bombardment near Lankien", inc.Title)
	assert.Equal(t, domain.CategoryBombardment, inc.Category)
	assert.Equal(t, "2026-02-03", inc.Date)
	assert.InDelta(t, 8.29, inc.Lat, 1e-9)
	assert.Equal(t, domain.SourceAIConfirmed, inc.Source)
	assert.True(t, inc.Verified)

	got, err := s.GetDraft(op.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftConfirmed, got.Status)
	assert.Equal(t, inc.ID, got.ConfirmedIncidentID)
}

func TestConfirmDraftSubstitutesCurrentDate(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	defer domain.SetClock(nil)

	s, op := newTestStore(t)
	d := pendingDraft(op.ID, "")
	d.SuggestedDate = ""
	created, err := s.CreateDraft(d)
	require.NoError(t, err)

	inc, err := s.ConfirmDraft(op.ID, created.ID, 8.28, 31.6)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", inc.Date)
}

func TestConfirmNonPendingDraftFails(t *testing.T) {
	s, op := newTestStore(t)
	d, err := s.CreateDraft(pendingDraft(op.ID, ""))
	require.NoError(t, err)

	_, err = s.ConfirmDraft(op.ID, d.ID, 8.28, 31.6)
	require.NoError(t, err)

	_, err = s.ConfirmDraft(op.ID, d.ID, 8.28, 31.6)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	err = s.RejectDraft(op.ID, d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestConcurrentDoubleConfirmCreatesOneIncident(t *testing.T) {
	s, op := newTestStore(t)
	d, err := s.CreateDraft(pendingDraft(op.ID, ""))
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ConfirmDraft(op.ID, d.ID, 8.28, 31.6)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, s.ListIncidents(op.ID), 1)
}

func TestRejectDraftRetained(t *testing.T) {
	s, op := newTestStore(t)
	d, err := s.CreateDraft(pendingDraft(op.ID, ""))
	require.NoError(t, err)

	require.NoError(t, s.RejectDraft(op.ID, d.ID))

	got, err := s.GetDraft(op.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftRejected, got.Status)
	assert.Empty(t, got.ConfirmedIncidentID)
	assert.Empty(t, s.ListIncidents(op.ID))
}

func TestListDraftsFilterByStatus(t *testing.T) {
	s, op := newTestStore(t)
	d1, err := s.CreateDraft(pendingDraft(op.ID, ""))
	require.NoError(t, err)
	_, err = s.CreateDraft(pendingDraft(op.ID, ""))
	require.NoError(t, err)
	require.NoError(t, s.RejectDraft(op.ID, d1.ID))

	assert.Len(t, s.ListDrafts(op.ID, ""), 2)
	assert.Len(t, s.ListDrafts(op.ID, domain.DraftPending), 1)
	assert.Len(t, s.ListDrafts(op.ID, domain.DraftRejected), 1)
}

func TestIncidentCoordinateImmutable(t *testing.T) {
	s, op := newTestStore(t)
	inc, err := s.CreateIncident(domain.Incident{
		OperationID: op.ID,
		Title:       "Checkpoint on Bor road",
		Category:    domain.CategoryAccessDenial,
		Severity:    domain.SeverityMedium,
		Lat:         6.21,
		Lon:         31.56,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceManual, inc.Source)

	title := "Checkpoint removed"
	sev := domain.SeverityLow
	got, err := s.UpdateIncident(op.ID, inc.ID, IncidentUpdate{Title: &title, Severity: &sev})
	require.NoError(t, err)
	assert.Equal(t, "Checkpoint removed", got.Title)
	assert.Equal(t, domain.SeverityLow, got.Severity)
	assert.InDelta(t, 6.21, got.Lat, 1e-9)
	assert.InDelta(t, 31.56, got.Lon, 1e-9)
}

func TestOperationSeverityRecompute(t *testing.T) {
	s, op := newTestStore(t)
	assert.Equal(t, domain.SeverityMedium, op.Severity)

	inc, err := s.CreateIncident(domain.Incident{
		OperationID: op.ID,
		Title:       "Massacre reported",
		Severity:    domain.SeverityCritical,
		Lat:         7.0, Lon: 31.0,
	})
	require.NoError(t, err)

	got, err := s.GetOperation(op.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityCritical, got.Severity)

	require.NoError(t, s.DeleteIncident(op.ID, inc.ID))
	_, err = s.CreateIncident(domain.Incident{
		OperationID: op.ID,
		Title:       "Minor scuffle",
		Severity:    domain.SeverityLow,
		Lat:         7.0, Lon: 31.0,
	})
	require.NoError(t, err)

	got, err = s.GetOperation(op.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityLow, got.Severity)
}

func TestDeleteOperationCascades(t *testing.T) {
	s, op := newTestStore(t)
	_, err := s.CreateCorridor(op.ID, "Bor-Malakal", []domain.Waypoint{
		{Name: "Bor", Lat: 6.21, Lon: 31.56},
		{Name: "Malakal", Lat: 9.53, Lon: 31.65},
	})
	require.NoError(t, err)
	brief, err := s.CreateBrief(op.ID, "quiet day", "radio")
	require.NoError(t, err)
	_, err = s.CreateDraft(pendingDraft(op.ID, brief.ID))
	require.NoError(t, err)
	_, err = s.CreateIncident(domain.Incident{OperationID: op.ID, Severity: domain.SeverityLow, Lat: 7, Lon: 31})
	require.NoError(t, err)
	_, err = s.CreateRiskZone(domain.RiskZone{OperationID: op.ID, Name: "Flooded plain", RadiusM: 5000, Severity: domain.SeverityMedium})
	require.NoError(t, err)

	require.NoError(t, s.DeleteOperation(op.ID))

	_, err = s.GetOperation(op.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, s.ListCorridors(op.ID))
	assert.Empty(t, s.ListBriefs(op.ID, true))
	assert.Empty(t, s.ListDrafts(op.ID, ""))
	assert.Empty(t, s.ListIncidents(op.ID))
	assert.Empty(t, s.ListRiskZones(op.ID))
}

func TestArchiveBriefSoftDelete(t *testing.T) {
	s, op := newTestStore(t)
	brief, err := s.CreateBrief(op.ID, "shelling near Waat", "radio")
	require.NoError(t, err)

	require.NoError(t, s.ArchiveBrief(op.ID, brief.ID))

	assert.Empty(t, s.ListBriefs(op.ID, false))
	archived := s.ListBriefs(op.ID, true)
	require.Len(t, archived, 1)
	assert.True(t, archived[0].Archived)

	// Still retrievable by id for drafts that reference it.
	got, err := s.GetBrief(op.ID, brief.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
}

func TestScopedLookups(t *testing.T) {
	s, op := newTestStore(t)
	other := s.CreateOperation("Other", domain.SeverityLow, domain.Region{})

	brief, err := s.CreateBrief(op.ID, "text", "")
	require.NoError(t, err)

	_, err = s.GetBrief(other.ID, brief.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
