package route

import "github.com/yanqian/accessroute/internal/domain/geo"

const (
	minChunks      = 3
	maxChunks      = 10
	pointsPerChunk = 5
)

// SplitPath divides path into between 3 and 10 contiguous chunks. Neighbouring chunks share
// their boundary point so each one is a valid line on its own. Chunks shorter than two points
// are dropped; a path shorter than two points yields no chunks.
func SplitPath(path []geo.Point) [][]geo.Point {
	total := len(path)
	if total < 2 {
		return nil
	}
	n := total / pointsPerChunk
	if n < minChunks {
		n = minChunks
	}
	if n > maxChunks {
		n = maxChunks
	}
	size := (total + n - 1) / n

	chunks := make([][]geo.Point, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		if start >= total {
			break
		}
		end := start + size + 1
		if end > total {
			end = total
		}
		if end-start < 2 {
			continue
		}
		chunk := make([]geo.Point, end-start)
		copy(chunk, path[start:end])
		chunks = append(chunks, chunk)
	}
	return chunks
}

// JoinSegments concatenates segment coordinates, emitting shared boundary points once.
func JoinSegments(segments []Segment) []geo.Point {
	var out []geo.Point
	for i, seg := range segments {
		coords := seg.Coordinates
		if i > 0 && len(coords) > 0 && len(out) > 0 && coords[0] == out[len(out)-1] {
			coords = coords[1:]
		}
		out = append(out, coords...)
	}
	return out
}
