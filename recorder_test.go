package resqtalk

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_StateMachine(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	r := NewRecorder(func(context.Context) (io.ReadCloser, error) { return pr, nil })

	assert.Equal(t, RecorderIdle, r.State())

	// Stop before start is rejected.
	_, err := r.Stop()
	assert.ErrorIs(t, err, ErrRecorderState)

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, RecorderRecording, r.State())

	// Double start is rejected and does not disturb the capture.
	err = r.Start(context.Background())
	assert.ErrorIs(t, err, ErrRecorderState)
	assert.Equal(t, RecorderRecording, r.State())

	_ = pw.Close()
	wav, err := r.Stop()
	require.NoError(t, err)
	assert.NotEmpty(t, wav)
	assert.Equal(t, RecorderIdle, r.State())

	// Stop again only after another start.
	_, err = r.Stop()
	assert.ErrorIs(t, err, ErrRecorderState)
}

func TestRecorder_CapturesPCM(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	r := NewRecorder(func(context.Context) (io.ReadCloser, error) { return pr, nil })
	require.NoError(t, r.Start(context.Background()))

	pcm := []byte{0x01, 0x00, 0xFF, 0x7F, 0x00, 0x80}
	_, err := pw.Write(pcm)
	require.NoError(t, err)
	_ = pw.Close()

	wav, err := r.Stop()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "default mono")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]), "default sample rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestRecorder_HeaderOptions(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	r := NewRecorder(
		func(context.Context) (io.ReadCloser, error) { return pr, nil },
		WithSampleRate(44100),
		WithChannels(2),
	)
	require.NoError(t, r.Start(context.Background()))
	_ = pw.Close()

	wav, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(wav[24:28]))
	// byteRate = sampleRate * channels * 2
	assert.Equal(t, uint32(44100*4), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(wav[32:34]), "block align")
}

func TestRecorder_StopReleasesSource(t *testing.T) {
	t.Parallel()

	pr, _ := io.Pipe()
	src := &closeTracking{ReadCloser: pr}
	r := NewRecorder(func(context.Context) (io.ReadCloser, error) { return src, nil })
	require.NoError(t, r.Start(context.Background()))

	// The source is still being read; Stop must close it to unblock capture.
	wav, err := r.Stop()
	require.NoError(t, err)
	assert.True(t, src.closed)
	assert.Len(t, wav, 44, "no PCM arrived, header only")
}

func TestRecorder_OpenFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("microphone permission denied")
	r := NewRecorder(func(context.Context) (io.ReadCloser, error) { return nil, boom })

	err := r.Start(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, RecorderIdle, r.State(), "failed start leaves the recorder idle")
}

func TestRecorder_CaptureFailureStillYieldsWAV(t *testing.T) {
	t.Parallel()

	boom := errors.New("device wedged")
	src := &failingSource{data: []byte{1, 2}, err: boom, failed: make(chan struct{})}
	r := NewRecorder(func(context.Context) (io.ReadCloser, error) { return src, nil })
	require.NoError(t, r.Start(context.Background()))

	// Wait for the capture goroutine to hit the device error.
	<-src.failed

	wav, err := r.Stop()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, RecorderIdle, r.State())
	// The bytes drained before the failure are still wrapped and returned.
	assert.Equal(t, []byte{1, 2}, wav[44:])
}

func TestRecorder_Restart(t *testing.T) {
	t.Parallel()

	var current []byte
	open := func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(current)), nil
	}
	r := NewRecorder(open)

	for _, pcm := range [][]byte{{1, 1}, {2, 2, 2, 2}} {
		current = pcm
		require.NoError(t, r.Start(context.Background()))
		wav, err := r.Stop()
		require.NoError(t, err)
		// Buffers never leak across sessions.
		assert.Equal(t, pcm, wav[44:])
	}
}

type closeTracking struct {
	io.ReadCloser
	closed bool
}

func (c *closeTracking) Close() error {
	c.closed = true
	return c.ReadCloser.Close()
}

type failingSource struct {
	data   []byte
	err    error
	failed chan struct{}
	once   bool
}

func (f *failingSource) Read(p []byte) (int, error) {
	if len(f.data) > 0 {
		n := copy(p, f.data)
		f.data = f.data[n:]
		return n, nil
	}
	if !f.once {
		f.once = true
		close(f.failed)
	}
	return 0, f.err
}

func (f *failingSource) Close() error { return nil }
