package province

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/province-map/internal/boundary"
)

const sampleBoundaries = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"name":"Istanbul"},"geometry":{"type":"Polygon","coordinates":[[[28,41],[29,41],[29,42],[28,41]]]}},
	{"type":"Feature","properties":{"name":"Sanliurfa"},"geometry":{"type":"Polygon","coordinates":[[[38,37],[39,37],[39,38],[38,37]]]}},
	{"type":"Feature","properties":{"name":""},"geometry":null}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "provinces.json",
		`[{"name":"İstanbul","culture":"Boğaz."},{"name":"Şanlıurfa","culture":"Balıklıgöl."}]`)

	provinces, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, provinces, 2)
	assert.Equal(t, Province{Name: "İstanbul", Culture: "Boğaz."}, provinces[0])
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	_, err = LoadFile(context.Background(), writeFile(t, "bad.json", `{"name":"x"}`))
	assert.Error(t, err)

	_, err = LoadFile(context.Background(), writeFile(t, "noname.json", `[{"culture":"x"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no name")
}

func TestFeatureNameMap(t *testing.T) {
	ds, err := boundary.Parse([]byte(sampleBoundaries))
	require.NoError(t, err)

	m := FeatureNameMap(ds, boundary.ResolveFeatureKey(ds))
	assert.Equal(t, map[string]string{
		"istanbul":  "Istanbul",
		"sanliurfa": "Sanliurfa",
	}, m)

	assert.Empty(t, FeatureNameMap(nil, "properties.name"))
}

func TestBuildRecords(t *testing.T) {
	ds, err := boundary.Parse([]byte(sampleBoundaries))
	require.NoError(t, err)
	fm := FeatureNameMap(ds, "properties.name")

	records := BuildRecords([]Province{
		{Name: "İstanbul", Culture: "Boğaz."},
		{Name: "Şanlıurfa", Culture: "Balıklıgöl."},
		{Name: "Rize", Culture: "Çay."},
	}, fm)

	require.Len(t, records, 3)
	assert.Equal(t, Record{Name: "İstanbul", FeatureName: "Istanbul", Culture: "Boğaz.", Matched: true}, records[0])
	assert.Equal(t, "Sanliurfa", records[1].FeatureName)
	assert.Equal(t, Record{Name: "Rize", FeatureName: "Rize", Culture: "Çay."}, records[2])
	assert.Equal(t, []string{"Rize"}, Unmatched(records))
}

func TestSelect(t *testing.T) {
	records := []Record{
		{Name: "Adana", FeatureName: "Adana"},
		{Name: "İzmir", FeatureName: "Izmir"},
	}

	r, ok := Select(records, "")
	require.True(t, ok)
	assert.Equal(t, "Adana", r.Name)

	r, ok = Select(records, "izmir")
	require.True(t, ok)
	assert.Equal(t, "İzmir", r.Name)

	r, ok = Select(records, "IZMIR")
	require.True(t, ok)
	assert.Equal(t, "İzmir", r.Name)

	_, ok = Select(records, "Atlantis")
	assert.False(t, ok)

	_, ok = Select(nil, "")
	assert.False(t, ok)
}

func TestLoadFile_BundledMetadata(t *testing.T) {
	provinces, err := LoadFile(context.Background(), filepath.Join("..", "..", "data", "provinces.json"))
	require.NoError(t, err)
	require.Len(t, provinces, boundary.ProvinceCount)

	seen := make(map[string]bool, len(provinces))
	for _, p := range provinces {
		key := NormalizeName(p.Name)
		assert.False(t, seen[key], "duplicate province %q", p.Name)
		seen[key] = true
		assert.NotEmpty(t, p.Culture, p.Name)
	}
}
