package hazard

import "github.com/paulmach/osm"

type tagRule struct {
	key         string
	values      []string
	severity    Severity
	category    string
	description string
}

// tagRules is evaluated in order; the first matching rule classifies the element.
var tagRules = []tagRule{
	{key: "highway", values: []string{"steps"}, severity: SeverityHazard, category: "stairs", description: "Stairs"},
	{key: "surface", values: []string{"unpaved", "gravel", "dirt", "sand"}, severity: SeverityHazard, category: "surface", description: "Unpaved surface"},
	{key: "smoothness", values: []string{"bad", "very_bad", "horrible"}, severity: SeverityHazard, category: "smoothness", description: "Rough surface"},
	{key: "wheelchair", values: []string{"no"}, severity: SeverityHazard, category: "wheelchair", description: "Not wheelchair accessible"},
	{key: "kerb", values: []string{"raised"}, severity: SeverityCaution, category: "kerb", description: "Raised kerb"},
	{key: "highway", values: []string{"living_street", "service"}, severity: SeverityCaution, category: "shared_street", description: "Shared street"},
	{key: "wheelchair", values: []string{"yes"}, severity: SeverityInfo, category: "wheelchair", description: "Wheelchair accessible"},
	{key: "kerb", values: []string{"lowered", "flush"}, severity: SeverityInfo, category: "kerb", description: "Lowered kerb"},
}

// Classification is the hazard meaning of a set of OSM tags.
type Classification struct {
	Severity    Severity
	Category    string
	Description string
}

// ClassifyTags maps OSM tags onto a hazard classification. ok is false for unmapped tags.
func ClassifyTags(tags osm.Tags) (Classification, bool) {
	for _, rule := range tagRules {
		value := tags.Find(rule.key)
		if value == "" {
			continue
		}
		for _, candidate := range rule.values {
			if value == candidate {
				return Classification{
					Severity:    rule.severity,
					Category:    rule.category,
					Description: rule.description,
				}, true
			}
		}
	}
	return Classification{}, false
}

// OverpassFilterKeys lists the tag keys worth querying for.
func OverpassFilterKeys() []string {
	seen := make(map[string]struct{}, len(tagRules))
	keys := make([]string, 0, len(tagRules))
	for _, rule := range tagRules {
		if _, ok := seen[rule.key]; ok {
			continue
		}
		seen[rule.key] = struct{}{}
		keys = append(keys, rule.key)
	}
	return keys
}
