// Package province loads the per-province cultural notes and joins them to
// the boundary dataset.
package province

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/province-map/internal/boundary"
	"github.com/sells-group/province-map/internal/fetcher"
)

// Province is one entry of the cultural metadata file.
type Province struct {
	Name    string `json:"name" yaml:"name"`
	Culture string `json:"culture" yaml:"culture"`
}

// Record is a province joined to its boundary feature.
type Record struct {
	Name        string `json:"name" yaml:"name"`
	FeatureName string `json:"feature_name" yaml:"feature_name"`
	Culture     string `json:"culture" yaml:"culture"`
	Matched     bool   `json:"matched" yaml:"matched"`
}

// LoadFile reads a JSON array of provinces.
func LoadFile(ctx context.Context, path string) ([]Province, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "province: open metadata")
	}
	defer f.Close() //nolint:errcheck

	out, err := fetcher.CollectJSONArray[Province](ctx, f)
	if err != nil {
		return nil, eris.Wrapf(err, "province: decode %s", path)
	}
	for i, p := range out {
		if p.Name == "" {
			return nil, eris.Errorf("province: entry %d in %s has no name", i, path)
		}
	}
	return out, nil
}

// FeatureNameMap maps normalized feature names to the raw names found under
// the given feature key. Features without a name are skipped.
func FeatureNameMap(d *boundary.Dataset, featureKey string) map[string]string {
	prop := boundary.PropertyName(featureKey)
	out := make(map[string]string)
	if d == nil {
		return out
	}
	for _, f := range d.Features {
		raw, _ := f.Properties[prop].(string)
		if raw == "" {
			continue
		}
		out[NormalizeName(raw)] = raw
	}
	return out
}

// BuildRecords joins provinces to feature names. A province with no matching
// feature keeps its own name as FeatureName.
func BuildRecords(provinces []Province, featureMap map[string]string) []Record {
	out := make([]Record, 0, len(provinces))
	for _, p := range provinces {
		rec := Record{Name: p.Name, FeatureName: p.Name, Culture: p.Culture}
		if fn, ok := featureMap[NormalizeName(p.Name)]; ok {
			rec.FeatureName = fn
			rec.Matched = true
		}
		out = append(out, rec)
	}
	return out
}

// Select returns the record whose name matches name after normalization. An
// empty name selects the first record.
func Select(records []Record, name string) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	if name == "" {
		return records[0], true
	}
	want := NormalizeName(name)
	for _, r := range records {
		if NormalizeName(r.Name) == want || NormalizeName(r.FeatureName) == want {
			return r, true
		}
	}
	return Record{}, false
}

// Unmatched returns the names of records that have no boundary feature.
func Unmatched(records []Record) []string {
	var out []string
	for _, r := range records {
		if !r.Matched {
			out = append(out, r.Name)
		}
	}
	return out
}
