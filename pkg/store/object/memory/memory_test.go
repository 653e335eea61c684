package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittovfd/pkg/store/object"
	objecttesting "github.com/marmos91/dittovfd/pkg/store/object/testing"
)

func TestMemoryStore(t *testing.T) {
	suite := &objecttesting.BackendTestSuite{
		NewBackend: func(t *testing.T) object.WritableBackend {
			return New()
		},
	}
	suite.Run(t)
}

func TestMemoryStore_PutCopiesData(t *testing.T) {
	s := New()
	data := []byte("hello")
	require.NoError(t, s.Put(context.Background(), "b", "k", data))

	data[0] = 'j'

	buf := make([]byte, 5)
	require.True(t, s.Fetch(context.Background(), "b", "k", 0, buf).IsOK())
	assert.Equal(t, "hello", string(buf))
}

func TestMemoryStore_Delete(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(context.Background(), "b", "k", []byte("x")))

	s.Delete("b", "k")
	_, out := s.Stat(context.Background(), "b", "k")
	assert.Equal(t, object.StatusNotFound, out.Status)

	// deleting from a missing bucket is harmless
	s.Delete("nope", "k")
}

func TestMemoryStore_CreateBucket(t *testing.T) {
	s := New()
	s.CreateBucket("b")

	_, out := s.Stat(context.Background(), "b", "k")
	assert.Equal(t, object.StatusNotFound, out.Status)
}
