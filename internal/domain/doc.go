// Package domain models humanitarian corridor planning data.
//
// # Entities
//
// An Operation is a named crisis context (a country-level response, an
// access negotiation, a convoy season). Everything else hangs off it:
//
//   - Corridor: an ordered waypoint route through the operation's region.
//   - Brief: a timestamped free-text situational report.
//   - Draft: a machine-extracted candidate incident awaiting human review.
//   - Incident: an authoritative, mappable record.
//   - RiskZone: a circular hazard area with severity styling.
//
// # Draft lifecycle
//
// Drafts move one way:
//
//	PENDING → CONFIRMED  (creates an Incident, stamps its id on the draft)
//	PENDING → REJECTED   (retained for audit, no Incident)
//
// Any other transition fails with [ErrInvalidStateTransition]. Confirming a
// draft fixes the incident coordinate permanently; the operator may adjust
// it from the suggestion before confirming, but not after.
//
// # Classification
//
// [Classify] maps a sentence-like segment to a category, a severity, and an
// optional ISO date using ordered keyword tables. First match wins, so table
// order is a documented contract: specific hazards (bombardment, looting)
// are checked before generic fallbacks, and displacement is the default
// because it is the most generic humanitarian category. Severity defaults
// to medium.
//
// # Coordinates
//
// All coordinates are WGS-84 decimal degrees. Bounding boxes never cross
// the antimeridian; regions this system serves do not require it.
package domain
