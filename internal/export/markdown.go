package export

import (
	"fmt"
	"strings"

	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/spatial"
)

// Markdown renders a situation report for an operation. Corridor risk is
// computed against the supplied incidents using bufferRadiusKm.
func Markdown(op domain.Operation, corridors []domain.Corridor, incidents []domain.Incident, drafts []domain.Draft, bufferRadiusKm float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Situation Report: %s\n\n", op.Name)
	fmt.Fprintf(&b, "Severity: **%s** | Status: %s | Generated: %s\n\n",
		strings.ToUpper(string(op.Severity)), op.Status, domain.Now().Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Corridors\n\n")
	if len(corridors) == 0 {
		b.WriteString("No corridors defined.\n\n")
	}
	for _, c := range corridors {
		length := spatial.RouteLengthKm(c.Waypoints)
		rated := spatial.IncidentsInBuffer(incidents, c.Waypoints, bufferRadiusKm)
		score := spatial.RiskScore(rated, nil)
		fmt.Fprintf(&b, "### %s\n\n", c.Name)
		fmt.Fprintf(&b, "- Length: %.0f km (%d waypoints)\n", length, len(c.Waypoints))
		fmt.Fprintf(&b, "- Risk score: %.2f (%d incidents within %.0f km)\n\n", score, len(rated), bufferRadiusKm)
		for _, ri := range rated {
			fmt.Fprintf(&b, "  - %s [%s] %.2f km off-route\n", ri.Title, ri.Severity, ri.DistanceKm)
		}
		if len(rated) > 0 {
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "## Incidents (%d)\n\n", len(incidents))
	if len(incidents) > 0 {
		b.WriteString("| Date | Title | Category | Severity | Verified |\n")
		b.WriteString("|------|-------|----------|----------|----------|\n")
		for _, inc := range incidents {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %t |\n",
				inc.Date, inc.Title, inc.Category, inc.Severity, inc.Verified)
		}
		b.WriteString("\n")
	}

	pending := 0
	for _, d := range drafts {
		if d.Status == domain.DraftPending {
			pending++
		}
	}
	fmt.Fprintf(&b, "## Drafts\n\n%d pending review of %d total.\n", pending, len(drafts))
	for _, d := range drafts {
		if d.Status != domain.DraftPending {
			continue
		}
		note := ""
		if d.UncertaintyFlag {
			note = " (uncertain location)"
		}
		fmt.Fprintf(&b, "- %s [%s]%s\n", d.SuggestedTitle, d.SuggestedSeverity, note)
	}

	return b.String()
}
