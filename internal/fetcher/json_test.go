package fetcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name    string `json:"name"`
	Culture string `json:"culture"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[{"name":"Adana","culture":"kebap"},{"name":"Bursa","culture":"iskender"}]`

	ch, errCh := DecodeJSONArray[testRecord](context.Background(), strings.NewReader(input))

	var records []testRecord
	for rec := range ch {
		records = append(records, rec)
	}
	for err := range errCh {
		require.NoError(t, err)
	}

	require.Len(t, records, 2)
	assert.Equal(t, "Adana", records[0].Name)
	assert.Equal(t, "iskender", records[1].Culture)
}

func TestDecodeJSONArray_NotArray(t *testing.T) {
	ch, errCh := DecodeJSONArray[testRecord](context.Background(), strings.NewReader(`{"name":"x"}`))
	for range ch { //nolint:revive // drain
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestDecodeJSONArray_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := range 1000 {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"name":"x","culture":"y"}`)
	}
	sb.WriteString("]")

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	_, err := CollectJSONArray[testRecord](ctx, strings.NewReader(sb.String()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestCollectJSONArray(t *testing.T) {
	out, err := CollectJSONArray[testRecord](context.Background(), strings.NewReader(`[{"name":"Van"}]`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Van", out[0].Name)
}

func TestCollectJSONArray_Malformed(t *testing.T) {
	_, err := CollectJSONArray[testRecord](context.Background(), strings.NewReader(`[{"name":`))
	assert.Error(t, err)
}

func TestCollectJSONArray_EmptyInput(t *testing.T) {
	out, err := CollectJSONArray[testRecord](context.Background(), strings.NewReader(``))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeJSONObject(t *testing.T) {
	obj, err := DecodeJSONObject[testRecord](strings.NewReader(`{"name":"Rize","culture":"tea"}`))
	require.NoError(t, err)
	assert.Equal(t, "Rize", obj.Name)

	_, err = DecodeJSONObject[testRecord](strings.NewReader(`not json`))
	assert.Error(t, err)
}
