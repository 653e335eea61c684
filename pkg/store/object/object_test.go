package object

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_WriteAdvances(t *testing.T) {
	buf := make([]byte, 8)
	c := NewCursor(buf)

	n, err := c.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.Write([]byte("defgh"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.True(t, c.Full())
	assert.Equal(t, "abcdefgh", string(buf))
}

func TestCursor_WriteOverflow(t *testing.T) {
	buf := make([]byte, 4)
	c := NewCursor(buf)

	n, err := c.Write([]byte("abcdef"))
	assert.ErrorIs(t, err, ErrCursorOverflow)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(buf))
}

func TestCursor_FillChunked(t *testing.T) {
	buf := make([]byte, 10)
	c := NewCursor(buf)

	// OneByteReader forces one chunk per byte, like a streaming body callback
	n, err := c.Fill(iotest.OneByteReader(strings.NewReader("0123456789")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, "0123456789", string(buf))
}

func TestCursor_FillShortBodyThenZeroFill(t *testing.T) {
	buf := bytes.Repeat([]byte{0xff}, 6)
	c := NewCursor(buf)

	n, err := c.Fill(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.False(t, c.Full())
	assert.Equal(t, 3, c.Remaining())

	c.ZeroFill()
	assert.True(t, c.Full())
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0}, buf)
}

func TestCursor_FillLongBodyOverflows(t *testing.T) {
	c := NewCursor(make([]byte, 3))

	_, err := c.Fill(strings.NewReader("abcd"))
	assert.ErrorIs(t, err, ErrCursorOverflow)
}

func TestCursor_FillReaderError(t *testing.T) {
	boom := errors.New("connection reset")
	c := NewCursor(make([]byte, 3))

	_, err := c.Fill(io.MultiReader(strings.NewReader("a"), iotest.ErrReader(boom)))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Written())
}

func TestStatus_StringAndSentinel(t *testing.T) {
	assert.Equal(t, "AccessDenied", StatusAccessDenied.String())
	assert.Equal(t, "Status(99)", Status(99).String())

	assert.NoError(t, StatusOK.Sentinel())
	assert.ErrorIs(t, StatusNotFound.Sentinel(), ErrNotFound)
	assert.ErrorIs(t, Status(99).Sentinel(), ErrFailed)

	assert.True(t, StatusTransient.Retryable())
	assert.False(t, StatusFailed.Retryable())
}

func TestOutcome_Err(t *testing.T) {
	assert.NoError(t, OK().Err())

	cause := errors.New("api error AccessDenied")
	detail := &Detail{Message: "Access Denied", Resource: "bucket/key"}
	err := Failure(StatusAccessDenied, detail, cause).Err()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "AccessDenied (bucket/key): Access Denied", err.Error())
	assert.Equal(t, StatusAccessDenied, StatusOf(err))
	assert.Equal(t, StatusFailed, StatusOf(cause))
	assert.Equal(t, StatusOK, StatusOf(nil))
}

func TestDetail_String(t *testing.T) {
	d := &Detail{
		Message:        "Access Denied",
		Resource:       "bucket/key",
		FurtherDetails: "operation error S3: HeadObject",
	}
	d.Add("Code", "AccessDenied")
	d.Add("RequestId", "")
	d.Add("HostId", "abc")

	want := "  Message: Access Denied\n" +
		"  Resource: bucket/key\n" +
		"  Further Details: operation error S3: HeadObject\n" +
		"  Extra Details:\n" +
		"    Code: AccessDenied\n" +
		"    HostId: abc\n"
	assert.Equal(t, want, d.String())

	var nilDetail *Detail
	assert.Empty(t, nilDetail.String())
}
