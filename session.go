package resqtalk

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ContentKind tags the message content variant so rendering code handles
// every case explicitly.
type ContentKind int

const (
	// ContentText is plain (markdown-capable) text.
	ContentText ContentKind = iota
	// ContentMedia references an attachment, e.g. a voice recording.
	ContentMedia
)

// Message is one entry in a conversation: either text or a media reference,
// never both.
type Message struct {
	ID     string
	Sender Sender
	Kind   ContentKind
	Text   string
	Media  string // attachment reference when Kind == ContentMedia
}

// Conversation messages surfaced on failures and void tool calls.
const (
	msgNoResponse      = "Error: Could not get a response from the bot."
	msgAudioFailed     = "Error: Could not process audio recording."
	mediaRecordingName = "recording.wav"
	okExecutingPrefix  = "Ok, executing tool: "
	failedToolPrefix   = "Failed to execute tool: "
)

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	logger   *slog.Logger
	onUpdate func([]Message)
}

// WithSessionLogger sets the logger for stream and dispatch failures.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithOnUpdate sets an observer called with a snapshot of the conversation
// after every change. This is the rendering layer's hook.
func WithOnUpdate(fn func([]Message)) SessionOption {
	return func(o *sessionOptions) {
		o.onUpdate = fn
	}
}

// Session owns one conversation with the backend. At most one prompt may be
// in flight at a time: a second Submit or SubmitVoice while one is
// outstanding fails with ErrSessionBusy, which callers use to disable their
// submit affordance. Per-exchange stream state (accumulated text,
// first-chunk flag) lives inside the exchange and is never shared across
// submissions.
type Session struct {
	client   *Client
	registry *Registry
	opts     sessionOptions

	mu       sync.Mutex
	inFlight bool
	messages []Message
	botIdx   int // index of the bot message owned by the current exchange, -1 when none
}

// NewSession creates a conversation backed by the given client and tool
// registry.
func NewSession(client *Client, registry *Registry, opts ...SessionOption) *Session {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		client:   client,
		registry: registry,
		opts:     o,
		botIdx:   -1,
	}
}

// Messages returns a snapshot of the conversation in order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit sends one text prompt through the full pipeline: manifest build,
// streamed generation, delta display, directive extraction, and dispatch.
// It returns the conversation snapshot after the exchange settles. Stream
// failures keep whatever text arrived before the failure on display and add
// an error message; they are also returned.
func (s *Session) Submit(ctx context.Context, prompt string) ([]Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return s.Messages(), nil
	}
	if err := s.begin(); err != nil {
		return s.Messages(), err
	}
	defer s.end()

	s.appendMessage(Message{ID: uuid.NewString(), Sender: SenderUser, Kind: ContentText, Text: prompt})

	stream, err := s.client.GenerateText(ctx, s.registry.Manifest(), prompt)
	if err != nil {
		s.logError("prompt submission failed", err)
		s.appendBot(msgNoResponse)
		return s.Messages(), err
	}

	text, err := stream.Drain(func(d Delta) error {
		if d.First {
			s.appendBot(stream.Text())
		} else {
			s.replaceBot(stream.Text())
		}
		return nil
	})
	if err != nil {
		// The partial reply stays on display; the session just ends.
		s.logError("stream failed", err)
		s.appendMessage(Message{ID: uuid.NewString(), Sender: SenderBot, Kind: ContentText, Text: msgNoResponse})
		return s.Messages(), err
	}

	s.settle(ctx, text)
	return s.Messages(), nil
}

// SubmitVoice sends a recorded WAV blob through the voice pipeline. The
// recording appears in the conversation as a media message; the backend's
// reply text then flows through the same extraction and dispatch path as a
// streamed reply.
func (s *Session) SubmitVoice(ctx context.Context, wav []byte) ([]Message, error) {
	if err := s.begin(); err != nil {
		return s.Messages(), err
	}
	defer s.end()

	s.appendMessage(Message{ID: uuid.NewString(), Sender: SenderUser, Kind: ContentMedia, Media: mediaRecordingName})

	reply, err := s.client.GenerateVoice(ctx, s.registry.Manifest(), wav)
	if err != nil {
		s.logError("voice submission failed", err)
		s.appendBot(msgAudioFailed)
		return s.Messages(), err
	}

	s.settle(ctx, reply)
	return s.Messages(), nil
}

// settle interprets a completed reply: extract a directive if one is
// embedded, dispatch it, and fold the outcome back into the conversation.
// Malformed directives are not errors; the raw text simply stays on
// display.
func (s *Session) settle(ctx context.Context, text string) {
	plain, dir, found := Extract(text)
	if !found {
		if text != "" {
			s.upsertBot(text)
		}
		return
	}

	result, err := s.registry.Dispatch(ctx, *dir)
	var outcome string
	switch {
	case err != nil:
		// Silently dropping a requested emergency action is unacceptable;
		// the failure must be visible.
		s.logError("tool dispatch failed", err)
		outcome = failedToolPrefix + dir.ToolName
	case result == "":
		outcome = okExecutingPrefix + dir.ToolName
	default:
		outcome = result
	}

	if plain == "" {
		// Pure tool call: the raw directive text (if streamed) is replaced
		// by the outcome.
		s.upsertBot(outcome)
		return
	}
	s.upsertBot(plain)
	s.appendMessage(Message{ID: uuid.NewString(), Sender: SenderBot, Kind: ContentText, Text: outcome})
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrSessionBusy
	}
	s.inFlight = true
	s.botIdx = -1
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.inFlight = false
	s.botIdx = -1
	s.mu.Unlock()
}

// appendBot adds the exchange's bot message; replaceBot rewrites it as
// deltas accumulate; upsertBot does whichever applies.
func (s *Session) appendBot(text string) {
	s.mu.Lock()
	s.messages = append(s.messages, Message{ID: uuid.NewString(), Sender: SenderBot, Kind: ContentText, Text: text})
	s.botIdx = len(s.messages) - 1
	s.mu.Unlock()
	s.notify()
}

func (s *Session) replaceBot(text string) {
	s.mu.Lock()
	if s.botIdx >= 0 {
		s.messages[s.botIdx].Text = text
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) upsertBot(text string) {
	s.mu.Lock()
	has := s.botIdx >= 0
	s.mu.Unlock()
	if has {
		s.replaceBot(text)
	} else {
		s.appendBot(text)
	}
}

func (s *Session) appendMessage(m Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	if s.opts.onUpdate != nil {
		s.opts.onUpdate(s.Messages())
	}
}

func (s *Session) logError(msg string, err error) {
	if s.opts.logger != nil {
		s.opts.logger.Error(msg, "error", err)
	}
}
