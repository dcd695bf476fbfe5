package proto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrFormat is the cause of every error produced by a message that was read
// in full but could not be understood.
var ErrFormat = errors.New("protocol format error")

// WriteUint16 writes a single big-endian uint16.
func WriteUint16(dst io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := dst.Write(buf[:]); err != nil {
		return errors.Wrap(err, "could not write uint16")
	}
	return nil
}

// ReadUint16 reads a single big-endian uint16 written by WriteUint16.
func ReadUint16(src io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return 0, errors.Wrap(err, "could not read uint16")
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteText writes a length-prefixed string. The prefix and the text go out
// in a single write.
func WriteText(dst io.Writer, s string) error {
	if len(s) > MaxTextLen {
		return errors.Errorf("text of %d bytes does not fit a 16-bit length", len(s))
	}
	buf := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	copy(buf[2:], s)
	if _, err := dst.Write(buf); err != nil {
		return errors.Wrap(err, "could not write text")
	}
	return nil
}

// ReadText reads a length-prefixed string written by WriteText.
func ReadText(src io.Reader) (string, error) {
	textLen, err := ReadUint16(src)
	if err != nil {
		return "", errors.Wrap(err, "could not read length of text")
	}
	data := make([]byte, textLen)
	if n, err := io.ReadFull(src, data); err != nil {
		return "", errors.Wrapf(err, "unable to read text of expected length (expected %v, got %v)", textLen, n)
	}
	return string(data), nil
}

// EncodePotato returns the RecordSize bytes for rec. It fails only if the
// record's trace length is out of range.
func EncodePotato(rec *PotatoRecord) ([]byte, error) {
	if rec.TraceLength < 0 || rec.TraceLength > MaxTrace {
		return nil, errors.Wrapf(ErrFormat, "trace length %d out of range", rec.TraceLength)
	}
	var buf bytes.Buffer
	buf.Grow(RecordSize)
	if err := binary.Write(&buf, binary.BigEndian, rec); err != nil {
		panic(fmt.Errorf("could not binary encode a potato record: %v", err))
	}
	if buf.Len() != RecordSize {
		panic(fmt.Errorf("potato record should be %d bytes, not %d", RecordSize, buf.Len()))
	}
	return buf.Bytes(), nil
}

// DecodePotato is the inverse of EncodePotato.
func DecodePotato(data []byte) (*PotatoRecord, error) {
	if len(data) != RecordSize {
		return nil, errors.Wrapf(ErrFormat, "potato record is %d bytes, expected %d", len(data), RecordSize)
	}
	rec := &PotatoRecord{}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, rec); err != nil {
		return nil, errors.Wrap(err, "could not decode potato record")
	}
	if rec.TraceLength < 0 || rec.TraceLength > MaxTrace {
		return nil, errors.Wrapf(ErrFormat, "trace length %d out of range", rec.TraceLength)
	}
	return rec, nil
}

// WritePotato writes rec as one fixed-size block.
func WritePotato(dst io.Writer, rec *PotatoRecord) error {
	data, err := EncodePotato(rec)
	if err != nil {
		return err
	}
	if _, err := dst.Write(data); err != nil {
		return errors.Wrap(err, "could not write potato")
	}
	return nil
}

// ReadPotato reads exactly one record written by WritePotato.
func ReadPotato(src io.Reader) (*PotatoRecord, error) {
	data := make([]byte, RecordSize)
	if _, err := io.ReadFull(src, data); err != nil {
		return nil, errors.Wrap(err, "could not read potato")
	}
	return DecodePotato(data)
}
