// Command briefcheck runs the extraction pipeline offline against a brief
// read from a file or stdin, using only the local gazetteer. It prints the
// draft incidents that would be created, without touching any external
// geocoder or a running server.
//
// Usage:
//
//	go run ./cmd/briefcheck -gazetteer data/gazetteer.json brief.txt
//	echo "Shelling near Lankien." | go run ./cmd/briefcheck
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/levonter/corridor/internal/assemble"
	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/extract"
	"github.com/levonter/corridor/internal/gazetteer"
	"github.com/levonter/corridor/internal/geocode"
)

// offlineGeocoder never resolves anything. Unknown places come back as
// uncertain drafts instead of triggering network lookups.
type offlineGeocoder struct{}

func (offlineGeocoder) Search(context.Context, string, domain.BoundingBox) ([]domain.Coordinate, error) {
	return nil, nil
}

func main() {
	gazPath := flag.String("gazetteer", "data/gazetteer.json", "path to the gazetteer JSON file")
	flag.Parse()

	if code := run(*gazPath, flag.Arg(0)); code != 0 {
		os.Exit(code)
	}
}

func run(gazPath, briefPath string) int {
	text, err := readBrief(briefPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read brief: %v\n", err)
		return 1
	}

	gaz, err := gazetteer.Load(gazPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load gazetteer: %v\n", err)
		return 1
	}

	logger := slog.New(slog.DiscardHandler)
	resolver := geocode.New(gaz, offlineGeocoder{}, 100, 0, logger)
	extractor := extract.New(gaz)

	names := extractor.Extract(text)
	fmt.Printf("Places extracted: %d\n", len(names))

	resolved := resolver.ResolveBatch(context.Background(), names, nil)

	places := make([]assemble.Place, 0, len(names))
	for _, name := range names {
		coord := resolved[name]
		status := "unresolved"
		if coord != nil {
			status = fmt.Sprintf("%.4f, %.4f", coord.Lat, coord.Lon)
		}
		fmt.Printf("  %-24s %s\n", name, status)
		places = append(places, assemble.Place{Name: name, Coord: coord})
	}

	drafts, deduped := assemble.Drafts(domain.Brief{Text: text}, places)
	fmt.Printf("\nDrafts: %d (%d deduplicated)\n", len(drafts), deduped)
	for i, d := range drafts {
		fmt.Printf("\n[%d] %s\n", i+1, d.SuggestedTitle)
		fmt.Printf("    category: %-16s severity: %s\n", d.SuggestedCategory, d.SuggestedSeverity)
		if d.SuggestedDate != "" {
			fmt.Printf("    date:     %s\n", d.SuggestedDate)
		}
		if d.SuggestedCoord != nil {
			fmt.Printf("    coord:    %.4f, %.4f\n", d.SuggestedCoord.Lat, d.SuggestedCoord.Lon)
		}
		if d.UncertaintyFlag {
			fmt.Printf("    note:     %s\n", d.UncertaintyNote)
		}
		fmt.Printf("    text:     %s\n", d.SuggestedDesc)
	}
	return 0
}

func readBrief(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
