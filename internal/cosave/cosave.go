// Package cosave implements the record-oriented co-save channel.
//
// The host stores plugin data alongside the native save file as a flat
// sequence of tagged records:
//
//	{tag uint32, version uint32, length uint32, payload [length]byte}
//
// all little-endian. Tags are conventionally four ASCII bytes ('BNEF').
// Readers must tolerate records they do not understand: unknown tags and
// versions are skipped by the consumer, never treated as fatal.
package cosave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxRecordSize bounds a single record payload. Plugin records are tiny;
// anything larger indicates a corrupt stream.
const MaxRecordSize = 1 << 20

// ErrRecordTooLarge is returned when a record length exceeds MaxRecordSize.
var ErrRecordTooLarge = errors.New("cosave: record exceeds size limit")

// Record is one tagged, versioned payload from the channel.
type Record struct {
	Tag     uint32
	Version uint32
	Payload []byte
}

// TagString renders a four-byte tag as ASCII ('BNEF'), for logs.
func TagString(tag uint32) string {
	b := []byte{
		byte(tag >> 24),
		byte(tag >> 16),
		byte(tag >> 8),
		byte(tag),
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08X", tag)
		}
	}
	return string(b)
}

// Writer appends records to an underlying stream.
type Writer struct {
	w io.Writer
}

// NewWriter wraps an output stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord frames and writes one record.
func (w *Writer) WriteRecord(tag, version uint32, payload []byte) error {
	if len(payload) > MaxRecordSize {
		return ErrRecordTooLarge
	}

	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], tag)
	binary.LittleEndian.PutUint32(hdr[4:8], version)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(payload)))

	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write record header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.w.Write(payload); err != nil {
			return fmt.Errorf("write record payload: %w", err)
		}
	}
	return nil
}

// Reader iterates records from an underlying stream.
type Reader struct {
	r io.Reader
}

// NewReader wraps an input stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record, or io.EOF at a clean end of stream.
// A header or payload cut short mid-record is reported as
// io.ErrUnexpectedEOF: a truncated save is corrupt, not merely finished.
func (r *Reader) Next() (Record, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read record header: %w", io.ErrUnexpectedEOF)
	}

	rec := Record{
		Tag:     binary.LittleEndian.Uint32(hdr[0:4]),
		Version: binary.LittleEndian.Uint32(hdr[4:8]),
	}
	length := binary.LittleEndian.Uint32(hdr[8:12])
	if length > MaxRecordSize {
		return Record{}, ErrRecordTooLarge
	}

	if length > 0 {
		rec.Payload = make([]byte, length)
		if _, err := io.ReadFull(r.r, rec.Payload); err != nil {
			return Record{}, fmt.Errorf("read record payload (%s v%d): %w",
				TagString(rec.Tag), rec.Version, io.ErrUnexpectedEOF)
		}
	}
	return rec, nil
}
