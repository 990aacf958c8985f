package resqtalk

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"sync"
)

// RecorderState is the explicit capture state machine: Idle → Recording →
// Stopping → Idle. Any other transition is ErrRecorderState.
type RecorderState int

const (
	RecorderIdle RecorderState = iota
	RecorderRecording
	RecorderStopping
)

func (s RecorderState) String() string {
	switch s {
	case RecorderIdle:
		return "idle"
	case RecorderRecording:
		return "recording"
	case RecorderStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OpenSourceFunc acquires the capture device and returns a reader of raw
// PCM frames. Closing the reader releases the device.
type OpenSourceFunc func(ctx context.Context) (io.ReadCloser, error)

// RecorderOption configures a Recorder.
type RecorderOption func(*recorderOptions)

type recorderOptions struct {
	sampleRate int
	channels   int
}

// WithSampleRate sets the PCM sample rate stamped into the WAV header
// (default 16000).
func WithSampleRate(hz int) RecorderOption {
	return func(o *recorderOptions) {
		o.sampleRate = hz
	}
}

// WithChannels sets the channel count stamped into the WAV header
// (default 1).
func WithChannels(n int) RecorderOption {
	return func(o *recorderOptions) {
		o.channels = n
	}
}

// Recorder owns one capture device. It buffers 16-bit PCM from the source
// while recording and wraps it into a WAV blob on Stop, ready for
// Client.GenerateVoice. Stop always releases the source, even when the
// capture drain failed.
type Recorder struct {
	open OpenSourceFunc
	opts recorderOptions

	mu            sync.Mutex
	state         RecorderState
	src           io.ReadCloser
	buf           bytes.Buffer
	done          chan struct{}
	copyErr       error
	stopRequested bool
}

// NewRecorder creates an idle recorder over the given source.
func NewRecorder(open OpenSourceFunc, opts ...RecorderOption) *Recorder {
	o := recorderOptions{sampleRate: 16000, channels: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return &Recorder{open: open, opts: o}
}

// State reports the current capture state.
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start acquires the capture device and begins buffering. Starting while
// not idle is ErrRecorderState.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != RecorderIdle {
		return fmt.Errorf("start while %s: %w", r.state, ErrRecorderState)
	}
	src, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("acquire capture source: %w", err)
	}
	r.src = src
	r.buf.Reset()
	r.copyErr = nil
	r.stopRequested = false
	r.done = make(chan struct{})
	r.state = RecorderRecording

	go func(src io.Reader, done chan struct{}) {
		_, err := io.Copy(&r.buf, src)
		r.mu.Lock()
		// An error caused by our own Close during Stop is normal
		// termination, not a capture failure.
		if err != nil && !(r.stopRequested && isClosedErr(err)) {
			r.copyErr = err
		}
		r.mu.Unlock()
		close(done)
	}(src, r.done)
	return nil
}

// Stop ends the capture and returns the recording as a WAV blob. The
// device is released unconditionally; a drain error is reported after
// release. Stopping while not recording is ErrRecorderState.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if r.state != RecorderRecording {
		state := r.state
		r.mu.Unlock()
		return nil, fmt.Errorf("stop while %s: %w", state, ErrRecorderState)
	}
	r.state = RecorderStopping
	r.stopRequested = true
	src, done := r.src, r.done
	r.mu.Unlock()

	closeErr := src.Close()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = RecorderIdle
	r.src = nil
	pcm := append([]byte(nil), r.buf.Bytes()...)
	r.buf.Reset()

	wav := encodeWAV(pcm, r.opts.sampleRate, r.opts.channels)
	if r.copyErr != nil {
		return wav, fmt.Errorf("capture drain: %w", r.copyErr)
	}
	if closeErr != nil {
		return wav, fmt.Errorf("release capture source: %w", closeErr)
	}
	return wav, nil
}

// isClosedErr reports whether err is the read failure produced by closing
// the source mid-read (pipes, files, network conns).
func isClosedErr(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, net.ErrClosed)
}

// encodeWAV wraps raw 16-bit little-endian PCM in a canonical RIFF/WAVE
// header.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(byteRate))
	binary.Write(&b, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(bitsPerSample))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}
