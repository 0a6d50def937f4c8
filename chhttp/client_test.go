package chhttp

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArrowStream(t *testing.T) []byte {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Uint32}}, nil)
	b := array.NewUint32Builder(mem)
	b.AppendValues([]uint32{1, 2, 3}, nil)
	arr := b.NewArray()
	defer arr.Release()
	rec := array.NewRecord(schema, []arrow.Array{arr}, 3)
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestClientQuerySendsExpectedRequest(t *testing.T) {
	stream := sampleArrowStream(t)

	var gotQuery, gotAuthUser string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		user, _, _ := r.BasicAuth()
		gotAuthUser = user
		w.Write(stream)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	c.User = "default"
	c.Password = "secret"

	reader, err := c.Query(context.Background(), "SELECT n FROM t")
	require.NoError(t, err)
	defer reader.Release()

	assert.Contains(t, gotQuery, "SELECT n FROM t")
	assert.Contains(t, gotQuery, "FORMAT ArrowStream")
	assert.Equal(t, "default", gotAuthUser)

	require.True(t, reader.Next())
	rec := reader.Record()
	assert.EqualValues(t, 3, rec.NumRows())
}

func TestClientQueryNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Code: 60, DB::Exception: Table doesn't exist", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Query(context.Background(), "SELECT * FROM missing")
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}
