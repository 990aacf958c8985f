package resqtalk

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// StreamSession consumes one streamed reply. It is a lazy, finite,
// non-restartable sequence of deltas: each Next call reads frames until a
// payload-carrying line arrives, appends it to the accumulated text, and
// returns it. A new stream is required per prompt.
//
// Frames are `\n`-terminated; only lines beginning with DataPrefix carry
// payload, and any other line is ignored. bufio handles chunk boundaries,
// so frames (and multi-byte characters) split across reads are reassembled
// rather than dropped, and a trailing unterminated line is flushed through
// the same extraction rule at EOF.
type StreamSession struct {
	ctx     context.Context
	r       *bufio.Reader
	body    io.Closer
	text    strings.Builder
	emitted bool // first non-empty delta already yielded
	done    bool
	err     error
}

// NewStreamSession wraps a streamed response body. The context bounds every
// read: cancel it to abort a hung backend. The body is closed when the
// stream ends, fails, or is closed explicitly.
func NewStreamSession(ctx context.Context, body io.ReadCloser) *StreamSession {
	return &StreamSession{
		ctx:  ctx,
		r:    bufio.NewReader(body),
		body: body,
	}
}

// Next returns the next delta in arrival order. It returns io.EOF when the
// stream is exhausted and a TransportError (with the partial text gathered
// so far) when the read fails; after either, the session yields nothing
// further. The concatenation of all returned delta texts equals the full
// decoded payload with framing removed.
func (s *StreamSession) Next() (Delta, error) {
	if s.done {
		if s.err != nil {
			return Delta{}, s.err
		}
		return Delta{}, io.EOF
	}
	for {
		if err := s.ctx.Err(); err != nil {
			return Delta{}, s.fail(err)
		}
		line, err := s.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return Delta{}, s.fail(err)
		}
		atEOF := err == io.EOF

		if data, ok := extractData(line); ok {
			s.text.WriteString(data)
			d := Delta{Text: data, First: !s.emitted}
			s.emitted = true
			if atEOF {
				s.finish()
			}
			return d, nil
		}
		if atEOF {
			s.finish()
			return Delta{}, io.EOF
		}
	}
}

// Drain consumes the rest of the stream, calling fn for each delta, and
// returns the full accumulated text. On failure the text gathered before
// the error is still returned so the caller can keep it on display.
func (s *StreamSession) Drain(fn func(Delta) error) (string, error) {
	for {
		d, err := s.Next()
		if err == io.EOF {
			return s.Text(), nil
		}
		if err != nil {
			return s.Text(), err
		}
		if fn != nil {
			if err := fn(d); err != nil {
				_ = s.Close()
				return s.Text(), err
			}
		}
	}
}

// Text returns the reply reconstructed so far. It grows monotonically
// until the stream ends.
func (s *StreamSession) Text() string {
	return s.text.String()
}

// Close releases the underlying body. Safe to call more than once.
func (s *StreamSession) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.body.Close()
}

func (s *StreamSession) finish() {
	s.done = true
	_ = s.body.Close()
}

func (s *StreamSession) fail(err error) error {
	s.err = &TransportError{Partial: s.Text(), Err: err}
	s.done = true
	_ = s.body.Close()
	return s.err
}

// extractData applies the framing rule to one line: strip the terminator
// and the DataPrefix; whitespace-only payloads are ignored, everything else
// is returned verbatim.
func extractData(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, DataPrefix) {
		return "", false
	}
	data := line[len(DataPrefix):]
	if strings.TrimSpace(data) == "" {
		return "", false
	}
	return data, true
}
