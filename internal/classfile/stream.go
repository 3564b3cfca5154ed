// Class file data stream reader and writer.
// All multi-byte quantities in a class file are big-endian.
package classfile

import (
	"encoding/binary"
	"errors"
)

var (
	ErrStreamEOF = errors.New("stream: unexpected end of data")
)

// Stream reads class file data.
type Stream struct {
	data []byte
	pos  int
	end  int
}

// NewStream creates a stream over the given data.
func NewStream(data []byte) *Stream {
	return &Stream{data: data, pos: 0, end: len(data)}
}

// Position returns the current read position.
func (s *Stream) Position() int { return s.pos }

// Remaining returns bytes left to read.
func (s *Stream) Remaining() int { return s.end - s.pos }

// ReadByte reads a single byte.
func (s *Stream) ReadByte() (byte, error) {
	if s.pos >= s.end {
		return 0, ErrStreamEOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// ReadBytes reads n bytes into a new slice.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	if n < 0 || s.pos+n > s.end {
		return nil, ErrStreamEOF
	}
	out := make([]byte, n)
	copy(out, s.data[s.pos:s.pos+n])
	s.pos += n
	return out, nil
}

// ReadUint8 reads a u1.
func (s *Stream) ReadUint8() (uint8, error) {
	return s.ReadByte()
}

// ReadUint16 reads a big-endian u2.
func (s *Stream) ReadUint16() (uint16, error) {
	if s.pos+2 > s.end {
		return 0, ErrStreamEOF
	}
	v := binary.BigEndian.Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// ReadUint32 reads a big-endian u4.
func (s *Stream) ReadUint32() (uint32, error) {
	if s.pos+4 > s.end {
		return 0, ErrStreamEOF
	}
	v := binary.BigEndian.Uint32(s.data[s.pos:])
	s.pos += 4
	return v, nil
}

// ReadUint64 reads a big-endian u8.
func (s *Stream) ReadUint64() (uint64, error) {
	if s.pos+8 > s.end {
		return 0, ErrStreamEOF
	}
	v := binary.BigEndian.Uint64(s.data[s.pos:])
	s.pos += 8
	return v, nil
}

// ReadInt8 reads a signed byte.
func (s *Stream) ReadInt8() (int8, error) {
	b, err := s.ReadByte()
	return int8(b), err
}

// ReadInt16 reads a big-endian signed 16-bit value.
func (s *Stream) ReadInt16() (int16, error) {
	v, err := s.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a big-endian signed 32-bit value.
func (s *Stream) ReadInt32() (int32, error) {
	v, err := s.ReadUint32()
	return int32(v), err
}

// Align advances position to the next alignment boundary relative to base.
// Used for the padding in tableswitch and lookupswitch.
func (s *Stream) Align(base, alignment int) {
	if alignment <= 0 {
		return
	}
	rem := (s.pos - base) % alignment
	if rem != 0 {
		s.pos += alignment - rem
	}
	if s.pos > s.end {
		s.pos = s.end
	}
}

// Skip advances the position by n bytes.
func (s *Stream) Skip(n int) error {
	if n < 0 || s.pos+n > s.end {
		return ErrStreamEOF
	}
	s.pos += n
	return nil
}

// Writer accumulates big-endian class file data.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) WriteUint16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }

func (w *Writer) WriteUint32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

func (w *Writer) WriteUint64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// PutUint16At overwrites a previously written u2 at offset.
func (w *Writer) PutUint16At(offset int, v uint16) {
	binary.BigEndian.PutUint16(w.buf[offset:], v)
}

// PutUint32At overwrites a previously written u4 at offset.
func (w *Writer) PutUint32At(offset int, v uint32) {
	binary.BigEndian.PutUint32(w.buf[offset:], v)
}
