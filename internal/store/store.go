// Package store is the in-memory record store for operations and their
// child entities. All state lives for the process; callers receive value
// copies, never pointers into internal maps.
package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/levonter/corridor/internal/domain"
)

// Store holds all operation data behind a single mutex. The draft
// confirm/reject transition reads and writes under the same lock, which
// gives the compare-and-swap semantics the lifecycle requires.
type Store struct {
	mu         sync.RWMutex
	operations map[string]*domain.Operation
	corridors  map[string]*domain.Corridor
	briefs     map[string]*domain.Brief
	drafts     map[string]*domain.Draft
	incidents  map[string]*domain.Incident
	riskZones  map[string]*domain.RiskZone
}

// New creates an empty store.
func New() *Store {
	return &Store{
		operations: make(map[string]*domain.Operation),
		corridors:  make(map[string]*domain.Corridor),
		briefs:     make(map[string]*domain.Brief),
		drafts:     make(map[string]*domain.Draft),
		incidents:  make(map[string]*domain.Incident),
		riskZones:  make(map[string]*domain.RiskZone),
	}
}

// Operations

// CreateOperation registers a new operation.
func (s *Store) CreateOperation(name string, severity domain.Severity, region domain.Region) domain.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Now()
	op := &domain.Operation{
		ID:        uuid.NewString(),
		Name:      name,
		Severity:  severity,
		Status:    "active",
		Region:    region,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.operations[op.ID] = op
	return *op
}

// GetOperation returns the operation or domain.ErrNotFound.
func (s *Store) GetOperation(id string) (domain.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.operations[id]
	if !ok {
		return domain.Operation{}, fmt.Errorf("operation %s: %w", id, domain.ErrNotFound)
	}
	return *op, nil
}

// ListOperations returns all operations sorted by creation time.
func (s *Store) ListOperations() []domain.Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Operation, 0, len(s.operations))
	for _, op := range s.operations {
		out = append(out, *op)
	}
	sortByCreated(out, func(o domain.Operation) (string, int64) { return o.ID, o.CreatedAt.UnixNano() })
	return out
}

// DeleteOperation removes the operation and cascades to every child
// entity: corridors, briefs, drafts, incidents, and risk zones.
func (s *Store) DeleteOperation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.operations[id]; !ok {
		return fmt.Errorf("operation %s: %w", id, domain.ErrNotFound)
	}
	delete(s.operations, id)
	for k, v := range s.corridors {
		if v.OperationID == id {
			delete(s.corridors, k)
		}
	}
	for k, v := range s.briefs {
		if v.OperationID == id {
			delete(s.briefs, k)
		}
	}
	for k, v := range s.drafts {
		if v.OperationID == id {
			delete(s.drafts, k)
		}
	}
	for k, v := range s.incidents {
		if v.OperationID == id {
			delete(s.incidents, k)
		}
	}
	for k, v := range s.riskZones {
		if v.OperationID == id {
			delete(s.riskZones, k)
		}
	}
	return nil
}

// Corridors

// CreateCorridor adds a corridor to an operation.
func (s *Store) CreateCorridor(operationID, name string, waypoints []domain.Waypoint) (domain.Corridor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.operations[operationID]; !ok {
		return domain.Corridor{}, fmt.Errorf("operation %s: %w", operationID, domain.ErrNotFound)
	}
	now := domain.Now()
	c := &domain.Corridor{
		ID:          uuid.NewString(),
		OperationID: operationID,
		Name:        name,
		Waypoints:   append([]domain.Waypoint(nil), waypoints...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.corridors[c.ID] = c
	return *c, nil
}

// GetCorridor returns a corridor scoped to an operation.
func (s *Store) GetCorridor(operationID, id string) (domain.Corridor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.corridors[id]
	if !ok || c.OperationID != operationID {
		return domain.Corridor{}, fmt.Errorf("corridor %s: %w", id, domain.ErrNotFound)
	}
	out := *c
	out.Waypoints = append([]domain.Waypoint(nil), c.Waypoints...)
	return out, nil
}

// ListCorridors returns an operation's corridors sorted by creation time.
func (s *Store) ListCorridors(operationID string) []domain.Corridor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Corridor
	for _, c := range s.corridors {
		if c.OperationID != operationID {
			continue
		}
		cp := *c
		cp.Waypoints = append([]domain.Waypoint(nil), c.Waypoints...)
		out = append(out, cp)
	}
	sortByCreated(out, func(c domain.Corridor) (string, int64) { return c.ID, c.CreatedAt.UnixNano() })
	return out
}

// UpdateCorridorWaypoints replaces a corridor's route.
func (s *Store) UpdateCorridorWaypoints(operationID, id string, waypoints []domain.Waypoint) (domain.Corridor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.corridors[id]
	if !ok || c.OperationID != operationID {
		return domain.Corridor{}, fmt.Errorf("corridor %s: %w", id, domain.ErrNotFound)
	}
	c.Waypoints = append([]domain.Waypoint(nil), waypoints...)
	c.UpdatedAt = domain.Now()
	out := *c
	out.Waypoints = append([]domain.Waypoint(nil), c.Waypoints...)
	return out, nil
}

// DeleteCorridor removes a corridor.
func (s *Store) DeleteCorridor(operationID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.corridors[id]
	if !ok || c.OperationID != operationID {
		return fmt.Errorf("corridor %s: %w", id, domain.ErrNotFound)
	}
	delete(s.corridors, id)
	return nil
}

// Briefs

// CreateBrief attaches a free-text brief to an operation and touches the
// operation's updated time.
func (s *Store) CreateBrief(operationID, text, source string) (domain.Brief, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.operations[operationID]
	if !ok {
		return domain.Brief{}, fmt.Errorf("operation %s: %w", operationID, domain.ErrNotFound)
	}
	b := &domain.Brief{
		ID:          uuid.NewString(),
		OperationID: operationID,
		Text:        text,
		Source:      source,
		CreatedAt:   domain.Now(),
	}
	s.briefs[b.ID] = b
	op.UpdatedAt = b.CreatedAt
	return *b, nil
}

// GetBrief returns a brief scoped to an operation.
func (s *Store) GetBrief(operationID, id string) (domain.Brief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.briefs[id]
	if !ok || b.OperationID != operationID {
		return domain.Brief{}, fmt.Errorf("brief %s: %w", id, domain.ErrNotFound)
	}
	return *b, nil
}

// ListBriefs returns an operation's briefs, newest last. Archived briefs
// are included only when includeArchived is set.
func (s *Store) ListBriefs(operationID string, includeArchived bool) []domain.Brief {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Brief
	for _, b := range s.briefs {
		if b.OperationID != operationID {
			continue
		}
		if b.Archived && !includeArchived {
			continue
		}
		out = append(out, *b)
	}
	sortByCreated(out, func(b domain.Brief) (string, int64) { return b.ID, b.CreatedAt.UnixNano() })
	return out
}

// ArchiveBrief soft-deletes a brief. The record is retained for audit and
// for drafts that still reference it.
func (s *Store) ArchiveBrief(operationID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.briefs[id]
	if !ok || b.OperationID != operationID {
		return fmt.Errorf("brief %s: %w", id, domain.ErrNotFound)
	}
	b.Archived = true
	return nil
}

// Drafts

// CreateDraft stores a pipeline-produced draft, assigning id, PENDING
// status, and creation time.
func (s *Store) CreateDraft(d domain.Draft) (domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.operations[d.OperationID]; !ok {
		return domain.Draft{}, fmt.Errorf("operation %s: %w", d.OperationID, domain.ErrNotFound)
	}
	d.ID = uuid.NewString()
	d.Status = domain.DraftPending
	d.ConfirmedIncidentID = ""
	d.CreatedAt = domain.Now()
	cp := d
	s.drafts[d.ID] = &cp
	return d, nil
}

// GetDraft returns a draft scoped to an operation.
func (s *Store) GetDraft(operationID, id string) (domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	if !ok || d.OperationID != operationID {
		return domain.Draft{}, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	return *d, nil
}

// ListDrafts returns an operation's drafts, optionally filtered by status.
func (s *Store) ListDrafts(operationID string, status domain.DraftStatus) []domain.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Draft
	for _, d := range s.drafts {
		if d.OperationID != operationID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, *d)
	}
	sortByCreated(out, func(d domain.Draft) (string, int64) { return d.ID, d.CreatedAt.UnixNano() })
	return out
}

// ConfirmDraft atomically moves a PENDING draft to CONFIRMED, creating the
// incident from the draft's suggested fields and the operator-supplied
// final coordinate. A draft that already left PENDING fails with
// domain.ErrInvalidStateTransition and never produces a second incident.
func (s *Store) ConfirmDraft(operationID, id string, finalLat, finalLon float64) (domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok || d.OperationID != operationID {
		return domain.Incident{}, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	if d.Status != domain.DraftPending {
		return domain.Incident{}, fmt.Errorf("draft %s is %s: %w", id, d.Status, domain.ErrInvalidStateTransition)
	}

	date := d.SuggestedDate
	if date == "" {
		date = domain.Now().Format("2006-01-02")
	}
	inc := s.createIncidentLocked(domain.Incident{
		OperationID: d.OperationID,
		Title:       d.SuggestedTitle,
		Description: d.SuggestedDesc,
		Category:    d.SuggestedCategory,
		Severity:    d.SuggestedSeverity,
		Date:        date,
		Lat:         finalLat,
		Lon:         finalLon,
		Source:      domain.SourceAIConfirmed,
		Verified:    true,
	})

	d.Status = domain.DraftConfirmed
	d.ConfirmedIncidentID = inc.ID
	return inc, nil
}

// RejectDraft moves a PENDING draft to REJECTED. The draft is retained.
func (s *Store) RejectDraft(operationID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok || d.OperationID != operationID {
		return fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	if d.Status != domain.DraftPending {
		return fmt.Errorf("draft %s is %s: %w", id, d.Status, domain.ErrInvalidStateTransition)
	}
	d.Status = domain.DraftRejected
	return nil
}

// Incidents

// CreateIncident records a manually entered incident.
func (s *Store) CreateIncident(inc domain.Incident) (domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.operations[inc.OperationID]; !ok {
		return domain.Incident{}, fmt.Errorf("operation %s: %w", inc.OperationID, domain.ErrNotFound)
	}
	if inc.Source == "" {
		inc.Source = domain.SourceManual
	}
	return s.createIncidentLocked(inc), nil
}

// createIncidentLocked assigns identity and timestamps, stores the
// incident, and recomputes the owning operation's severity. Caller holds
// the write lock.
func (s *Store) createIncidentLocked(inc domain.Incident) domain.Incident {
	now := domain.Now()
	inc.ID = uuid.NewString()
	inc.CreatedAt = now
	inc.UpdatedAt = now
	if inc.Date == "" {
		inc.Date = now.Format("2006-01-02")
	}
	cp := inc
	s.incidents[inc.ID] = &cp
	s.recomputeSeverityLocked(inc.OperationID)
	return inc
}

// GetIncident returns an incident scoped to an operation.
func (s *Store) GetIncident(operationID, id string) (domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.incidents[id]
	if !ok || inc.OperationID != operationID {
		return domain.Incident{}, fmt.Errorf("incident %s: %w", id, domain.ErrNotFound)
	}
	return *inc, nil
}

// ListIncidents returns an operation's incidents sorted by creation time.
func (s *Store) ListIncidents(operationID string) []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Incident
	for _, inc := range s.incidents {
		if inc.OperationID != operationID {
			continue
		}
		out = append(out, *inc)
	}
	sortByCreated(out, func(i domain.Incident) (string, int64) { return i.ID, i.CreatedAt.UnixNano() })
	return out
}

// IncidentUpdate carries the editable incident fields. Nil fields are left
// unchanged; the coordinate is fixed at creation and cannot be edited.
type IncidentUpdate struct {
	Title        *string
	Description  *string
	Category     *domain.Category
	Severity     *domain.Severity
	Date         *string
	Actor        *string
	Organization *string
	Verified     *bool
}

// UpdateIncident applies an update and recomputes operation severity.
func (s *Store) UpdateIncident(operationID, id string, upd IncidentUpdate) (domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok || inc.OperationID != operationID {
		return domain.Incident{}, fmt.Errorf("incident %s: %w", id, domain.ErrNotFound)
	}
	if upd.Title != nil {
		inc.Title = *upd.Title
	}
	if upd.Description != nil {
		inc.Description = *upd.Description
	}
	if upd.Category != nil {
		inc.Category = *upd.Category
	}
	if upd.Severity != nil {
		inc.Severity = *upd.Severity
	}
	if upd.Date != nil {
		inc.Date = *upd.Date
	}
	if upd.Actor != nil {
		inc.Actor = *upd.Actor
	}
	if upd.Organization != nil {
		inc.Organization = *upd.Organization
	}
	if upd.Verified != nil {
		inc.Verified = *upd.Verified
	}
	inc.UpdatedAt = domain.Now()
	s.recomputeSeverityLocked(operationID)
	return *inc, nil
}

// DeleteIncident removes an incident and recomputes operation severity.
func (s *Store) DeleteIncident(operationID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok || inc.OperationID != operationID {
		return fmt.Errorf("incident %s: %w", id, domain.ErrNotFound)
	}
	delete(s.incidents, id)
	s.recomputeSeverityLocked(operationID)
	return nil
}

// recomputeSeverityLocked sets an operation's severity to the maximum of
// its incidents' severities, leaving it untouched when the operation has
// no incidents. Caller holds the write lock.
func (s *Store) recomputeSeverityLocked(operationID string) {
	op, ok := s.operations[operationID]
	if !ok {
		return
	}
	var highest domain.Severity
	for _, inc := range s.incidents {
		if inc.OperationID != operationID {
			continue
		}
		if inc.Severity.Rank() > highest.Rank() {
			highest = inc.Severity
		}
	}
	if highest != "" {
		op.Severity = highest
	}
	op.UpdatedAt = domain.Now()
}

// Risk zones

// CreateRiskZone adds a styled hazard circle to an operation.
func (s *Store) CreateRiskZone(z domain.RiskZone) (domain.RiskZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.operations[z.OperationID]; !ok {
		return domain.RiskZone{}, fmt.Errorf("operation %s: %w", z.OperationID, domain.ErrNotFound)
	}
	z.ID = uuid.NewString()
	cp := z
	s.riskZones[z.ID] = &cp
	return z, nil
}

// ListRiskZones returns an operation's risk zones sorted by id.
func (s *Store) ListRiskZones(operationID string) []domain.RiskZone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.RiskZone
	for _, z := range s.riskZones {
		if z.OperationID != operationID {
			continue
		}
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sortByCreated orders records by creation time, tie-breaking on id so
// list output is stable across calls.
func sortByCreated[T any](items []T, key func(T) (string, int64)) {
	sort.Slice(items, func(i, j int) bool {
		idI, tI := key(items[i])
		idJ, tJ := key(items[j])
		if tI != tJ {
			return tI < tJ
		}
		return strings.Compare(idI, idJ) < 0
	})
}
