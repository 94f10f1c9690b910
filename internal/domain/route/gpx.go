package route

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

const gpxNamespace = "http://www.topografix.com/GPX/1/1"

type gpxDocument struct {
	XMLName xml.Name `xml:"gpx"`
	Xmlns   string   `xml:"xmlns,attr"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Track   gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name    string     `xml:"name,omitempty"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat string `xml:"lat,attr"`
	Lon string `xml:"lon,attr"`
	Ele string `xml:"ele"`
}

// EncodeGPX renders the route as a single-track GPX 1.1 document, one trkpt per path
// coordinate. Elevation comes from the profile when it covers every point, else 0.
func EncodeGPX(result Result, name string) ([]byte, error) {
	points := JoinSegments(result.Segments)
	useProfile := len(result.Elevation) == len(points)

	doc := gpxDocument{
		Xmlns:   gpxNamespace,
		Version: "1.1",
		Creator: "accessroute",
		Track: gpxTrack{
			Name:    name,
			Segment: gpxSegment{Points: make([]gpxPoint, 0, len(points))},
		},
	}
	for i, p := range points {
		ele := 0.0
		if useProfile {
			ele = result.Elevation[i].Elevation
		}
		doc.Track.Segment.Points = append(doc.Track.Segment.Points, gpxPoint{
			Lat: strconv.FormatFloat(p.Lat, 'f', 7, 64),
			Lon: strconv.FormatFloat(p.Lng, 'f', 7, 64),
			Ele: strconv.FormatFloat(ele, 'f', 1, 64),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode gpx: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
