package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/levonter/corridor/internal/domain"
)

// CSV renders incidents as a spreadsheet with a fixed header row.
func CSV(incidents []domain.Incident) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "title", "category", "severity", "date", "lat", "lon", "actor", "organization", "source", "verified"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, inc := range incidents {
		row := []string{
			inc.ID,
			inc.Title,
			string(inc.Category),
			string(inc.Severity),
			inc.Date,
			strconv.FormatFloat(inc.Lat, 'f', -1, 64),
			strconv.FormatFloat(inc.Lon, 'f', -1, 64),
			inc.Actor,
			inc.Organization,
			string(inc.Source),
			strconv.FormatBool(inc.Verified),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row for %s: %w", inc.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
