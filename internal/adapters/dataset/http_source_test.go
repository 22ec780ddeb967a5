package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

func TestHTTPSource_LoadCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	ds, err := NewHTTPSource(server.URL+"/export?format=csv", "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestHTTPSource_LoadXLSXByContentType(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"MEDICAMENTO", "CID", "OBS", "MUNICIPAL"},
		[]interface{}{"Paracetamol", "R50", "", "sim"},
	)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	ds, err := NewHTTPSource(server.URL+"/download", "").Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "Paracetamol", ds.Records[0].MedicationName)
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	ds, err := NewHTTPSource(server.URL, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPSource_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, "").Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoad(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsSpreadsheet(t *testing.T) {
	assert.True(t, isSpreadsheet("https://example.org/lista.XLSX?dl=1", ""))
	assert.True(t, isSpreadsheet("https://example.org/x", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.False(t, isSpreadsheet("https://example.org/lista.csv", "text/csv"))
}
