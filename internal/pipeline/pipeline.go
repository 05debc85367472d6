// Package pipeline orchestrates the brief-to-drafts flow: place
// extraction, geocode resolution, classification and assembly, and draft
// storage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/levonter/corridor/internal/assemble"
	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/extract"
	"github.com/levonter/corridor/internal/geocode"
	"github.com/levonter/corridor/internal/observability"
	"github.com/levonter/corridor/internal/store"
)

// Pipeline processes briefs into pending drafts. Per-item failures inside
// a brief (an unresolvable place, an unclassifiable segment) never abort
// the run; they degrade to uncertain or dropped drafts.
type Pipeline struct {
	extractor *extract.Extractor
	resolver  *geocode.Resolver
	store     *store.Store
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New wires the pipeline components together.
func New(extractor *extract.Extractor, resolver *geocode.Resolver, st *store.Store, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		resolver:  resolver,
		store:     st,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessBrief runs extraction, resolution, and assembly for one stored
// brief and persists the resulting drafts. The owning operation's region
// bounds become the geocoding bias for the run. progress may be nil.
func (p *Pipeline) ProcessBrief(ctx context.Context, brief domain.Brief, progress geocode.ProgressFunc) ([]domain.Draft, error) {
	started := time.Now()
	defer func() {
		p.metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	}()
	p.metrics.BriefsProcessed.Inc()

	op, err := p.store.GetOperation(brief.OperationID)
	if err != nil {
		return nil, fmt.Errorf("loading operation for brief %s: %w", brief.ID, err)
	}
	p.resolver.SetRegionBias(op.Region.Bounds)

	candidates := p.extractor.Extract(brief.Text)
	p.metrics.PlacesExtracted.Add(float64(len(candidates)))
	if len(candidates) == 0 {
		p.logger.Debug("no place candidates in brief", "brief_id", brief.ID)
		return nil, nil
	}

	geocodeStart := time.Now()
	resolved := p.resolver.ResolveBatch(ctx, candidates, progress)
	p.metrics.GeocodeDuration.Observe(time.Since(geocodeStart).Seconds())

	places := make([]assemble.Place, 0, len(candidates))
	for _, name := range candidates {
		coord := resolved[name]
		if coord != nil {
			p.metrics.GeocodeResolves.WithLabelValues("resolved").Inc()
		} else {
			p.metrics.GeocodeResolves.WithLabelValues("none").Inc()
		}
		places = append(places, assemble.Place{Name: name, Coord: coord})
	}

	drafts, deduped := assemble.Drafts(brief, places)
	p.metrics.DraftsDeduped.Add(float64(deduped))

	created := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		stored, err := p.store.CreateDraft(d)
		if err != nil {
			// The operation disappeared mid-run; nothing later in the
			// batch can succeed either.
			return created, fmt.Errorf("storing draft for brief %s: %w", brief.ID, err)
		}
		p.metrics.DraftsCreated.Inc()
		created = append(created, stored)
	}

	p.logger.Info("brief processed",
		"brief_id", brief.ID,
		"operation_id", brief.OperationID,
		"candidates", len(candidates),
		"drafts", len(created),
		"deduped", deduped,
		"duration", time.Since(started))
	return created, nil
}
