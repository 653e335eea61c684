// Package testing provides a conformance suite for object.Backend
// implementations.
package testing

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittovfd/pkg/store/object"
)

// BackendTestSuite tests the Backend contract, not implementation details,
// so every variant (memory, filesystem, badger, S3) runs the same checks.
//
// Usage:
//
//	func TestMyBackend(t *testing.T) {
//	    suite := &objecttesting.BackendTestSuite{
//	        NewBackend: func(t *testing.T) object.WritableBackend {
//	            return mybackend.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type BackendTestSuite struct {
	// NewBackend returns a fresh, empty backend for each test.
	// The suite closes it when the test ends.
	NewBackend func(t *testing.T) object.WritableBackend
}

// Run executes all tests in the suite.
func (suite *BackendTestSuite) Run(t *testing.T) {
	t.Run("StatReportsSize", suite.testStatReportsSize)
	t.Run("StatMissing", suite.testStatMissing)
	t.Run("StatEmptyBucket", suite.testStatEmptyBucket)
	t.Run("FetchRange", suite.testFetchRange)
	t.Run("FetchWholeObject", suite.testFetchWholeObject)
	t.Run("FetchZeroFillsTail", suite.testFetchZeroFillsTail)
	t.Run("FetchPastEnd", suite.testFetchPastEnd)
	t.Run("FetchMissing", suite.testFetchMissing)
	t.Run("FetchEmptyBuffer", suite.testFetchEmptyBuffer)
	t.Run("NestedKeys", suite.testNestedKeys)
	t.Run("BucketsAreIsolated", suite.testBucketsAreIsolated)
	t.Run("PutReplaces", suite.testPutReplaces)
	t.Run("Canceled", suite.testCanceled)
	t.Run("ConcurrentFetch", suite.testConcurrentFetch)
}

func testContext() context.Context {
	return context.Background()
}

func (suite *BackendTestSuite) newBackend(t *testing.T) object.WritableBackend {
	t.Helper()
	b := suite.NewBackend(t)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// Pattern returns n deterministic, non-repeating-looking bytes.
func Pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*7 + i/251) % 256)
	}
	return data
}

// MustPut stores data and fails the test if it errors.
func MustPut(t *testing.T, b object.WritableBackend, bucket, key string, data []byte) {
	t.Helper()
	require.NoError(t, b.Put(testContext(), bucket, key, data), "Put should succeed")
}

// AssertStatus checks the outcome's status and, for failures, that Err
// matches the status sentinel.
func AssertStatus(t *testing.T, want object.Status, out object.Outcome) {
	t.Helper()
	assert.Equal(t, want.String(), out.Status.String())
	if want != object.StatusOK {
		assert.True(t, errors.Is(out.Err(), want.Sentinel()), "outcome error %v should match %v", out.Err(), want.Sentinel())
	}
}

// ============================================================================
// Metadata Probe
// ============================================================================

func (suite *BackendTestSuite) testStatReportsSize(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "object", Pattern(4096))
	MustPut(t, b, "bucket", "empty", nil)

	size, out := b.Stat(testContext(), "bucket", "object")
	AssertStatus(t, object.StatusOK, out)
	assert.Equal(t, uint64(4096), size)

	size, out = b.Stat(testContext(), "bucket", "empty")
	AssertStatus(t, object.StatusOK, out)
	assert.Zero(t, size)
}

func (suite *BackendTestSuite) testStatMissing(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "present", []byte("x"))

	size, out := b.Stat(testContext(), "bucket", "absent")
	AssertStatus(t, object.StatusNotFound, out)
	assert.Zero(t, size)

	_, out = b.Stat(testContext(), "no-such-bucket", "present")
	AssertStatus(t, object.StatusNotFound, out)
}

func (suite *BackendTestSuite) testStatEmptyBucket(t *testing.T) {
	b := suite.newBackend(t)

	_, out := b.Stat(testContext(), "", "key")
	assert.False(t, out.IsOK())
	assert.ErrorIs(t, out.Err(), object.ErrInvalidName)
}

// ============================================================================
// Ranged Fetch
// ============================================================================

func (suite *BackendTestSuite) testFetchRange(t *testing.T) {
	b := suite.newBackend(t)
	data := Pattern(4096)
	MustPut(t, b, "bucket", "object", data)

	buf := make([]byte, 200)
	out := b.Fetch(testContext(), "bucket", "object", 100, buf)
	AssertStatus(t, object.StatusOK, out)
	assert.Equal(t, data[100:300], buf)
}

func (suite *BackendTestSuite) testFetchWholeObject(t *testing.T) {
	b := suite.newBackend(t)
	data := Pattern(1000)
	MustPut(t, b, "bucket", "object", data)

	buf := make([]byte, len(data))
	AssertStatus(t, object.StatusOK, b.Fetch(testContext(), "bucket", "object", 0, buf))
	assert.Equal(t, data, buf)
}

func (suite *BackendTestSuite) testFetchZeroFillsTail(t *testing.T) {
	b := suite.newBackend(t)
	data := Pattern(100)
	MustPut(t, b, "bucket", "object", data)

	buf := bytes.Repeat([]byte{0xff}, 50)
	AssertStatus(t, object.StatusOK, b.Fetch(testContext(), "bucket", "object", 80, buf))
	assert.Equal(t, data[80:], buf[:20])
	assert.Equal(t, make([]byte, 30), buf[20:])
}

func (suite *BackendTestSuite) testFetchPastEnd(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "object", Pattern(100))

	AssertStatus(t, object.StatusInvalidRange, b.Fetch(testContext(), "bucket", "object", 100, make([]byte, 10)))
	AssertStatus(t, object.StatusInvalidRange, b.Fetch(testContext(), "bucket", "object", 5000, make([]byte, 10)))
}

func (suite *BackendTestSuite) testFetchMissing(t *testing.T) {
	b := suite.newBackend(t)

	AssertStatus(t, object.StatusNotFound, b.Fetch(testContext(), "bucket", "absent", 0, make([]byte, 10)))
}

func (suite *BackendTestSuite) testFetchEmptyBuffer(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "object", Pattern(10))

	AssertStatus(t, object.StatusOK, b.Fetch(testContext(), "bucket", "object", 3, nil))
}

// ============================================================================
// Naming
// ============================================================================

func (suite *BackendTestSuite) testNestedKeys(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "data/2024/object1", []byte("nested"))
	MustPut(t, b, "bucket", "data/object1", []byte("shallow"))

	size, out := b.Stat(testContext(), "bucket", "data/2024/object1")
	AssertStatus(t, object.StatusOK, out)
	assert.Equal(t, uint64(6), size)

	buf := make([]byte, 7)
	AssertStatus(t, object.StatusOK, b.Fetch(testContext(), "bucket", "data/object1", 0, buf))
	assert.Equal(t, "shallow", string(buf))
}

func (suite *BackendTestSuite) testBucketsAreIsolated(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "one", "key", []byte("first"))
	MustPut(t, b, "two", "key", []byte("second!"))

	size, out := b.Stat(testContext(), "one", "key")
	AssertStatus(t, object.StatusOK, out)
	assert.Equal(t, uint64(5), size)

	size, out = b.Stat(testContext(), "two", "key")
	AssertStatus(t, object.StatusOK, out)
	assert.Equal(t, uint64(7), size)
}

func (suite *BackendTestSuite) testPutReplaces(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "object", Pattern(100))
	MustPut(t, b, "bucket", "object", []byte("short"))

	size, out := b.Stat(testContext(), "bucket", "object")
	AssertStatus(t, object.StatusOK, out)
	assert.Equal(t, uint64(5), size)

	buf := make([]byte, 5)
	AssertStatus(t, object.StatusOK, b.Fetch(testContext(), "bucket", "object", 0, buf))
	assert.Equal(t, "short", string(buf))
}

// ============================================================================
// Cancellation and Concurrency
// ============================================================================

func (suite *BackendTestSuite) testCanceled(t *testing.T) {
	b := suite.newBackend(t)
	MustPut(t, b, "bucket", "object", Pattern(10))

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	_, out := b.Stat(ctx, "bucket", "object")
	AssertStatus(t, object.StatusCanceled, out)

	AssertStatus(t, object.StatusCanceled, b.Fetch(ctx, "bucket", "object", 0, make([]byte, 5)))
}

func (suite *BackendTestSuite) testConcurrentFetch(t *testing.T) {
	b := suite.newBackend(t)
	data := Pattern(64 * 1024)
	MustPut(t, b, "bucket", "object", data)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(off int) {
			defer wg.Done()
			buf := make([]byte, 1024)
			out := b.Fetch(testContext(), "bucket", "object", uint64(off), buf)
			if assert.True(t, out.IsOK(), "fetch at %d: %v", off, out.Err()) {
				assert.Equal(t, data[off:off+1024], buf)
			}
		}(i * 4000)
	}
	wg.Wait()
}
