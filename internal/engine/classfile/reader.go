package classfile

import (
	"encoding/binary"

	"unusedclass/internal/core/errors"
)

// byteReader is a big-endian cursor over an in-memory class file.
type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *byteReader) need(n int) error {
	if n < 0 || r.remaining() < n {
		return malformedAt(r.off, "truncated input: need %d bytes, have %d", n, r.remaining())
	}
	return nil
}

func (r *byteReader) u1() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *byteReader) u2() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *byteReader) u4() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *byteReader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// sub carves the next n bytes into an independent reader and advances past
// them. Offsets reported by the sub-reader stay absolute.
func (r *byteReader) sub(n int) (*byteReader, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	s := &byteReader{buf: r.buf[:r.off+n], off: r.off}
	r.off += n
	return s, nil
}

func malformedAt(off int, format string, args ...interface{}) error {
	err := errors.Newf(errors.CodeMalformedClassFile, format, args...)
	return errors.AddContext(err, errors.CtxOffset, off)
}

func malformed(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeMalformedClassFile, format, args...)
}
