package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/envelope"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
	"github.com/ameersohail0/OpenDaVINCI/registry"
)

// frameHeaderSize is the type id and sent stamp that precede the payload.
const frameHeaderSize = 4 + 8

// DefaultMaxFrameSize bounds a single frame, header included, on both the
// Recorder and the Player.
const DefaultMaxFrameSize = 64 << 20

// StreamOption configures a Recorder or a Player.
type StreamOption func(*streamOptions)

type streamOptions struct {
	maxFrameSize uint32
}

// WithMaxFrameSize overrides DefaultMaxFrameSize. Values below the frame
// header size are ignored.
func WithMaxFrameSize(n uint32) StreamOption {
	return func(o *streamOptions) {
		if n >= frameHeaderSize {
			o.maxFrameSize = n
		}
	}
}

func applyStreamOptions(opts []StreamOption) streamOptions {
	o := streamOptions{maxFrameSize: DefaultMaxFrameSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Recorder writes envelopes as frames. It is safe for concurrent use.
type Recorder struct {
	mu           sync.Mutex
	w            *bufio.Writer
	codec        *codec.Codec
	maxFrameSize uint32
	frames       uint64
}

// NewRecorder returns a Recorder writing to w.
func NewRecorder(w io.Writer, c *codec.Codec, opts ...StreamOption) *Recorder {
	if c == nil {
		c = codec.Default()
	}
	o := applyStreamOptions(opts)
	return &Recorder{w: bufio.NewWriter(w), codec: c, maxFrameSize: o.maxFrameSize}
}

// Write appends one frame. The frame reaches the underlying writer on Flush.
// A frame larger than the maximum frame size is rejected and nothing is
// written, so every recorded frame can be played back.
func (r *Recorder) Write(e *envelope.Envelope) error {
	if e == nil {
		return errors.WrapInvalid(errors.ErrNilEnvelope, "Recorder", "Write", "check envelope")
	}

	buf := make([]byte, 4+frameHeaderSize, 64)
	binary.BigEndian.PutUint32(buf[4:], e.TypeID())
	binary.BigEndian.PutUint64(buf[8:], uint64(e.Sent().Microseconds()))

	buf, err := e.AppendTo(r.codec, buf)
	if err != nil {
		return err
	}
	size := len(buf) - 4
	if uint64(size) > uint64(r.maxFrameSize) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s frame is %d bytes, limit %d", errors.ErrMalformedField, e.LongName(), size, r.maxFrameSize),
			"Recorder", "Write", "check frame size")
	}
	binary.BigEndian.PutUint32(buf[0:], uint32(size))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(buf); err != nil {
		return errors.WrapTransient(err, "Recorder", "Write", "write frame")
	}
	r.frames++
	return nil
}

// Flush writes buffered frames to the underlying writer.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Flush(); err != nil {
		return errors.WrapTransient(err, "Recorder", "Flush", "flush frames")
	}
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Player reads frames written by a Recorder.
type Player struct {
	r            *bufio.Reader
	codec        *codec.Codec
	reg          *registry.Registry
	maxFrameSize uint32
	offset       int64
	err          error
}

// NewPlayer returns a Player decoding shapes known to reg.
func NewPlayer(rd io.Reader, c *codec.Codec, reg *registry.Registry, opts ...StreamOption) *Player {
	if c == nil {
		c = codec.Default()
	}
	o := applyStreamOptions(opts)
	return &Player{
		r:            bufio.NewReader(rd),
		codec:        c,
		reg:          reg,
		maxFrameSize: o.maxFrameSize,
	}
}

// Next returns the next envelope. It returns io.EOF at a clean end of input
// and an error matching errors.ErrTruncatedInput when the input stops inside
// a frame.
//
// A bad frame length or a cut frame leaves the stream unframed, so Next keeps
// returning that error and Offset stays at the start of the bad frame. A frame
// whose payload fails to decode is skipped; the next call reads the frame after it.
func (p *Player) Next() (*envelope.Envelope, error) {
	if p.err != nil {
		return nil, p.err
	}
	e, err := p.next()
	var fe *frameError
	if errors.As(err, &fe) {
		p.err = err
	}
	return e, err
}

// frameError marks errors after which frame boundaries are lost.
type frameError struct {
	err error
}

func (e *frameError) Error() string { return e.err.Error() }
func (e *frameError) Unwrap() error { return e.err }

func (p *Player) next() (*envelope.Envelope, error) {
	var lenBuf [4]byte
	n, err := io.ReadFull(p.r, lenBuf[:])
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, p.truncated(int64(n), err)
	}

	size := binary.BigEndian.Uint32(lenBuf[:])
	if size < frameHeaderSize || size > p.maxFrameSize {
		return nil, errors.WrapInvalid(&frameError{
			fmt.Errorf("%w: frame at offset %d has length %d", errors.ErrMalformedField, p.offset, size)},
			"Player", "Next", "read frame length")
	}

	frame := make([]byte, size)
	if n, err := io.ReadFull(p.r, frame); err != nil {
		return nil, p.truncated(int64(4+n), err)
	}
	start := p.offset
	p.offset += int64(4 + size)

	id := binary.BigEndian.Uint32(frame[0:4])
	sent := timestamp.TimeStamp(int64(binary.BigEndian.Uint64(frame[4:12])))

	r, err := p.reg.Decode(p.codec, id, frame[frameHeaderSize:])
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("frame at offset %d: %w", start, err),
			"Player", "Next", "decode payload")
	}
	e, err := envelope.Wrap(r)
	if err != nil {
		return nil, err
	}
	e.StampSent(sent)
	return e, nil
}

// Offset returns the number of bytes consumed by complete frames. After a
// framing error it is the offset of the bad frame.
func (p *Player) Offset() int64 {
	return p.offset
}

func (p *Player) truncated(read int64, err error) error {
	return errors.WrapInvalid(&frameError{
		fmt.Errorf("%w: frame at offset %d ends after %d bytes: %v",
			errors.ErrTruncatedInput, p.offset, read, err)},
		"Player", "Next", "read frame")
}
