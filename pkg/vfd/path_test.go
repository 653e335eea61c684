package vfd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		bucket string
		key    string
	}{
		{"simple", "mybucket/object1", "mybucket", "object1"},
		{"nested key", "mybucket/data/object1", "mybucket", "data/object1"},
		{"trailing separator", "mybucket/dir/", "mybucket", "dir/"},
		{"empty key", "mybucket/", "mybucket", ""},
		{"no separator", "mybucket", "mybucket", ""},
		{"leading separator in key", "b//k", "b", "/k"},
		{"no decoding", "b/a%20b", "b", "a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParsePath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestParsePath_Invalid(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"empty bucket", "/key"},
		{"bucket too long", strings.Repeat("b", MaxBucketNameLen+1) + "/k"},
		{"key too long", "b/" + strings.Repeat("k", MaxFilenameLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePath(tt.path)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestParsePath_RoundTrip(t *testing.T) {
	pairs := []struct{ bucket, key string }{
		{"b", "k"},
		{"bucket-1", "a/b/c/d"},
		{"x", "/leading"},
		{"x", "trailing/"},
		{"unicode", "données/😀"},
		{strings.Repeat("b", MaxBucketNameLen), strings.Repeat("k", MaxFilenameLen)},
	}

	for _, p := range pairs {
		bucket, key, err := ParsePath(JoinPath(p.bucket, p.key))
		require.NoError(t, err)
		assert.Equal(t, p.bucket, bucket)
		assert.Equal(t, p.key, key)
	}
}
