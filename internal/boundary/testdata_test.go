package boundary

import (
	"fmt"
	"strings"
)

// collectionJSON builds a FeatureCollection with n square provinces named
// "Il 01", "Il 02", ... under the given property key.
func collectionJSON(n int, key string) string {
	features := make([]string, 0, n)
	for i := range n {
		x := float64(26 + i%10)
		y := float64(36 + i/10)
		features = append(features, fmt.Sprintf(
			`{"type":"Feature","id":%d,"properties":{%q:"Il %02d"},"geometry":{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}}`,
			i+1, key, i+1, x, y, x+1, y, x+1, y+1, x, y+1, x, y))
	}
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

// withEmptyGeometry replaces the coordinates of the first feature in doc
// with an empty array.
func withEmptyGeometry(doc string) string {
	i := strings.Index(doc, `"coordinates":`)
	j := strings.Index(doc[i:], "}")
	return doc[:i] + `"coordinates":[]` + doc[i+j:]
}
