package cosave

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteRecord(0x424E4546, 2, []byte{1, 3, 0, 0, 0}))
	require.NoError(t, w.WriteRecord(0x54455354, 1, nil))

	r := NewReader(&buf)

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x424E4546), rec.Tag)
	assert.Equal(t, uint32(2), rec.Version)
	assert.Equal(t, []byte{1, 3, 0, 0, 0}, rec.Payload)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x54455354), rec.Tag)
	assert.Equal(t, uint32(1), rec.Version)
	assert.Empty(t, rec.Payload)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err, "clean end of stream is io.EOF")
}

func TestReader_TruncatedHeader(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x46, 0x45}))
	_, err := r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_TruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecord(0x424E4546, 2, []byte{1, 2, 3, 4}))

	// Cut the stream mid-payload.
	data := buf.Bytes()[:buf.Len()-2]

	r := NewReader(bytes.NewReader(data))
	_, err := r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_OversizedRecordRejected(t *testing.T) {
	var buf bytes.Buffer
	// Hand-build a header claiming a payload beyond the limit.
	hdr := []byte{
		0x46, 0x45, 0x4E, 0x42, // tag
		0x01, 0x00, 0x00, 0x00, // version
		0xFF, 0xFF, 0xFF, 0x7F, // length
	}
	buf.Write(hdr)

	r := NewReader(&buf)
	_, err := r.Next()
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestWriter_OversizedRecordRejected(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	err := w.WriteRecord(1, 1, make([]byte, MaxRecordSize+1))
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "BNEF", TagString(0x424E4546))
	assert.Equal(t, "0x00000001", TagString(1), "non-printable tags render as hex")
}
