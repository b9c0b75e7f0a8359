package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	rec := NewRecorder()

	rec.DocumentsTotal.WithLabelValues(StatusOK).Inc()
	rec.DocumentsTotal.WithLabelValues(StatusOK).Inc()
	rec.DocumentsTotal.WithLabelValues(StatusFailed).Inc()
	rec.RowsExcluded.WithLabelValues(ReasonNoPrice).Add(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.DocumentsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.DocumentsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.RowsExcluded.WithLabelValues(ReasonNoPrice)))
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()

	a.LineItemsExtracted.Add(5)

	assert.Equal(t, 5.0, testutil.ToFloat64(a.LineItemsExtracted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LineItemsExtracted))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.CheapestItems.Set(4)

	path := filepath.Join(t.TempDir(), "nested", "metrics.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "invoice_cheapest_items 4")
}

func TestRecorder_WriteTextfileDisabled(t *testing.T) {
	assert.NoError(t, NewRecorder().WriteTextfile(""))
}

func TestRecorder_Gatherer(t *testing.T) {
	rec := NewRecorder()
	rec.DocumentsTotal.WithLabelValues(StatusOK).Inc()
	rec.DocumentsTotal.WithLabelValues(StatusFailed).Inc()

	count, err := testutil.GatherAndCount(rec.Gatherer(), "invoice_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
