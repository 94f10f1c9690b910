package hazard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/accessroute/internal/domain/geo"
)

type seedFile struct {
	Hazards []seedEntry `yaml:"hazards"`
}

type seedEntry struct {
	Lat         float64 `yaml:"lat"`
	Lng         float64 `yaml:"lng"`
	Severity    string  `yaml:"severity"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
}

// LoadSeedFile reads static hazard points from a YAML file.
func LoadSeedFile(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hazard seed: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

// DecodeSeed parses the YAML seed format:
//
//	hazards:
//	  - {lat: 27.62, lng: 85.54, severity: hazard, category: stairs, description: Stairs}
func DecodeSeed(r io.Reader) ([]Point, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode hazard seed: %w", err)
	}
	points := make([]Point, 0, len(doc.Hazards))
	for i, entry := range doc.Hazards {
		loc := geo.Point{Lat: entry.Lat, Lng: entry.Lng}
		if !loc.Valid() {
			return nil, fmt.Errorf("hazard seed entry %d: invalid coordinate %s", i, loc)
		}
		severity, err := ParseSeverity(entry.Severity)
		if err != nil {
			return nil, fmt.Errorf("hazard seed entry %d: %w", i, err)
		}
		points = append(points, Point{
			Point:       loc,
			Severity:    severity,
			Category:    entry.Category,
			Description: entry.Description,
			Source:      SourceStatic,
		})
	}
	return points, nil
}

// EncodeSeed writes points in the format DecodeSeed reads.
func EncodeSeed(w io.Writer, points []Point) error {
	doc := seedFile{Hazards: make([]seedEntry, 0, len(points))}
	for _, p := range points {
		doc.Hazards = append(doc.Hazards, seedEntry{
			Lat:         p.Lat,
			Lng:         p.Lng,
			Severity:    string(p.Severity),
			Category:    p.Category,
			Description: p.Description,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode hazard seed: %w", err)
	}
	return enc.Close()
}
