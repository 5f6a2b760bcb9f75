// Package boundary models the province boundary FeatureCollection and checks
// that a downloaded document is complete.
package boundary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/province-map/internal/fetcher"
)

// ProvinceCount is the number of first-level administrative divisions of
// Turkey.
const ProvinceCount = 81

// Feature is one province boundary.
type Feature struct {
	ID         string
	Properties map[string]any
	Geometry   geom.T
}

// Dataset is a decoded FeatureCollection.
type Dataset struct {
	Features []Feature
	// Size is the length in bytes of the encoded document.
	Size int64
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// Parse decodes a GeoJSON FeatureCollection.
func Parse(data []byte) (*Dataset, error) {
	raw, err := fetcher.DecodeJSONObject[rawCollection](bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "boundary: decode collection")
	}
	if raw.Type != "FeatureCollection" {
		return nil, eris.Errorf("boundary: expected FeatureCollection, got %q", raw.Type)
	}

	ds := &Dataset{
		Features: make([]Feature, 0, len(raw.Features)),
		Size:     int64(len(data)),
	}
	for i, rf := range raw.Features {
		f, err := rf.decode()
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: feature %d", i)
		}
		ds.Features = append(ds.Features, f)
	}
	return ds, nil
}

// ReadFile parses the FeatureCollection stored at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: open dataset")
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: read dataset")
	}
	return Parse(data)
}

func (rf rawFeature) decode() (Feature, error) {
	if rf.Type != "Feature" {
		return Feature{}, eris.Errorf("expected Feature, got %q", rf.Type)
	}

	f := Feature{
		ID:         decodeID(rf.ID),
		Properties: rf.Properties,
	}

	// Absent and explicit-null geometries both leave Geometry nil.
	trimmed := bytes.TrimSpace(rf.Geometry)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return f, nil
	}

	var g geom.T
	if err := geojson.Unmarshal(trimmed, &g); err != nil {
		return Feature{}, eris.Wrap(err, "decode geometry")
	}
	f.Geometry = g
	return f, nil
}

// decodeID accepts both string and numeric feature ids.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// candidateKeys are the property names that carry the province name, in the
// order the common Turkish boundary datasets use them.
var candidateKeys = []string{"name", "NAME_1", "NAME", "province"}

// ResolveFeatureKey returns the feature-id key of the dataset in the
// "properties.<key>" form used by map front ends. Only the first feature is
// inspected; "properties.name" is the fallback.
func ResolveFeatureKey(d *Dataset) string {
	if d != nil && len(d.Features) > 0 {
		props := d.Features[0].Properties
		for _, k := range candidateKeys {
			if _, ok := props[k]; ok {
				return "properties." + k
			}
		}
	}
	return "properties.name"
}

// PropertyName strips the "properties." prefix from a feature key.
func PropertyName(featureKey string) string {
	return strings.TrimPrefix(featureKey, "properties.")
}

// Identifier returns the province identifier of f under the given property
// key, falling back to the feature id.
func (f Feature) Identifier(prop string) string {
	if v, ok := f.Properties[prop]; ok {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return f.ID
}

// Bounds is the bounding box of a feature as [minLon, minLat, maxLon, maxLat].
type Bounds [4]float64

// Bounds returns the bounding box of the feature geometry.
func (f Feature) Bounds() (Bounds, bool) {
	if f.Geometry == nil {
		return Bounds{}, false
	}
	b := f.Geometry.Bounds()
	if b == nil || b.IsEmpty() {
		return Bounds{}, false
	}
	return Bounds{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}, true
}

// String renders the bounds for log output.
func (b Bounds) String() string {
	return fmt.Sprintf("[%.4f,%.4f,%.4f,%.4f]", b[0], b[1], b[2], b[3])
}
