package mapapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/province-map/internal/boundary"
	"github.com/sells-group/province-map/internal/model"
	"github.com/sells-group/province-map/internal/province"
)

const sampleBoundaries = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"name":"Izmir"},"geometry":{"type":"Polygon","coordinates":[[[26,38],[28,38],[28,39],[26,38]]]}},
	{"type":"Feature","properties":{"name":"Van"},"geometry":{"type":"Polygon","coordinates":[[[42,38],[44,38],[44,39.5],[42,38]]]}}
]}`

type fakeHistory struct {
	rows []model.Provision
	err  error
}

func (f *fakeHistory) ListProvisions(_ context.Context, limit int) ([]model.Provision, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func newTestHandler(t *testing.T, history History) *Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tr.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleBoundaries), 0o644))

	ds, err := boundary.Parse([]byte(sampleBoundaries))
	require.NoError(t, err)

	records := province.BuildRecords([]province.Province{
		{Name: "İzmir", Culture: "Boyoz."},
		{Name: "Van", Culture: "Kahvaltı."},
		{Name: "Rize", Culture: "Çay."},
	}, province.FeatureNameMap(ds, boundary.ResolveFeatureKey(ds)))

	return NewHandler(path, ds, records, history)
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.Router([]string{"*"}).ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(t, newTestHandler(t, nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestBoundaries(t *testing.T) {
	w := serve(t, newTestHandler(t, nil), "/api/boundaries")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
	assert.Equal(t, sampleBoundaries, w.Body.String())
}

func TestListProvinces(t *testing.T) {
	w := serve(t, newTestHandler(t, nil), "/api/provinces")
	require.Equal(t, http.StatusOK, w.Code)

	var body provinceList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "properties.name", body.FeatureKey)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, []string{"Rize"}, body.Unmatched)
	assert.Equal(t, "Izmir", body.Provinces[0].FeatureName)
}

func TestGetProvince(t *testing.T) {
	w := serve(t, newTestHandler(t, nil), "/api/provinces/izmir")
	require.Equal(t, http.StatusOK, w.Code)

	var body provinceDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "İzmir", body.Name)
	assert.Equal(t, "Boyoz.", body.Culture)
	require.NotNil(t, body.Bounds)
	assert.Equal(t, boundary.Bounds{26, 38, 28, 39}, *body.Bounds)
}

func TestGetProvince_PaddedFeatureName(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":" Van  "},"geometry":{"type":"Polygon","coordinates":[[[42,38],[44,38],[44,39.5],[42,38]]]}}
	]}`
	path := filepath.Join(t.TempDir(), "tr.geojson")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	ds, err := boundary.Parse([]byte(doc))
	require.NoError(t, err)

	records := province.BuildRecords(
		[]province.Province{{Name: "Van", Culture: "Kahvaltı."}},
		province.FeatureNameMap(ds, boundary.ResolveFeatureKey(ds)),
	)
	require.Equal(t, " Van  ", records[0].FeatureName)

	w := serve(t, NewHandler(path, ds, records, nil), "/api/provinces/Van")
	require.Equal(t, http.StatusOK, w.Code)

	var body provinceDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Bounds)
	assert.Equal(t, boundary.Bounds{42, 38, 44, 39.5}, *body.Bounds)
}

func TestGetProvince_NoBoundary(t *testing.T) {
	w := serve(t, newTestHandler(t, nil), "/api/provinces/Rize")
	require.Equal(t, http.StatusOK, w.Code)

	var body provinceDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Bounds)
	assert.False(t, body.Matched)
}

func TestGetProvince_Unknown(t *testing.T) {
	w := serve(t, newTestHandler(t, nil), "/api/provinces/Atlantis")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProvisions(t *testing.T) {
	hist := &fakeHistory{rows: []model.Provision{
		{ID: "b", Status: model.ProvisionStatusCached},
		{ID: "a", Status: model.ProvisionStatusFetched},
	}}
	w := serve(t, newTestHandler(t, hist), "/api/provisions?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []model.Provision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)
}

func TestListProvisions_Errors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(t, newTestHandler(t, nil), "/api/provisions").Code)

	h := newTestHandler(t, &fakeHistory{})
	assert.Equal(t, http.StatusBadRequest, serve(t, h, "/api/provisions?limit=x").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, "/api/provisions").Code)
	assert.JSONEq(t, `[]`, serve(t, h, "/api/provisions").Body.String())

	h = newTestHandler(t, &fakeHistory{err: errors.New("db closed")})
	assert.Equal(t, http.StatusInternalServerError, serve(t, h, "/api/provisions").Code)
}

func TestCORSHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/provinces", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	newTestHandler(t, nil).Router([]string{"http://localhost:5173"}).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
