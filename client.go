package resqtalk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the ResQTalk backend. All methods honor their context,
// attach the Cloudflare Access headers when configured, and report non-2xx
// statuses as TransportError.
type Client struct {
	baseURL string
	httpc   *http.Client
	opts    clientOptions
}

// NewClient creates a backend client for the given base URL
// (e.g. "http://localhost:8000").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	httpc := o.httpClient
	if httpc == nil {
		// No global timeout: the text stream stays open for the whole
		// generation. Per-call deadlines come from the context.
		httpc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		opts:    o,
	}
}

// GenerateText submits one prompt plus the current tool manifest and
// returns the stream of reply deltas. The caller owns the returned session
// and must drain or close it. The configured rate limit, if any, is applied
// before the request is sent.
func (c *Client) GenerateText(ctx context.Context, manifest, prompt string) (*StreamSession, error) {
	if err := c.waitLimiter(ctx); err != nil {
		return nil, err
	}
	body, err := json.Marshal(generateRequest{FrontendTools: manifest, Prompt: prompt})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/generate/text", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, c.transportErr(0, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, c.transportErr(resp.StatusCode, nil)
	}
	return NewStreamSession(ctx, resp.Body), nil
}

// GenerateVoice uploads a recorded WAV blob and returns the full reply text
// (transcription plus answer, possibly carrying a tool-call directive). The
// manifest travels as a query parameter, matching the deployed prompt
// template.
func (c *Client) GenerateVoice(ctx context.Context, manifest string, wav []byte) (string, error) {
	if err := c.waitLimiter(ctx); err != nil {
		return "", err
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "recording.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wav); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	path := "/generate/voice?frontendTools=" + url.QueryEscape(manifest)
	req, err := c.newRequest(ctx, http.MethodPost, path, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out VoiceResponse
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Mode fetches the persisted input mode.
func (c *Client) Mode(ctx context.Context) (Mode, error) {
	var out modeResponse
	if err := c.getJSON(ctx, "/mode", &out); err != nil {
		return "", err
	}
	return out.Mode, nil
}

// SwitchMode persists a new input mode server-side.
func (c *Client) SwitchMode(ctx context.Context, mode Mode) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/mode/switch?mode="+url.QueryEscape(string(mode)), nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// Privileges reports whether the backend grants this client god-mode pages.
func (c *Client) Privileges(ctx context.Context) (bool, error) {
	var out privilegesResponse
	if err := c.getJSON(ctx, "/privileges", &out); err != nil {
		return false, err
	}
	return out.IsGodMode, nil
}

// SystemPrompt fetches the stored system prompt for the given key.
func (c *Client) SystemPrompt(ctx context.Context, key string) (string, error) {
	var out systemPromptResponse
	if err := c.getJSON(ctx, "/prompt?key="+url.QueryEscape(key), &out); err != nil {
		return "", err
	}
	return out.Prompt, nil
}

// SetSystemPrompt replaces the stored system prompt for the given key.
func (c *Client) SetSystemPrompt(ctx context.Context, key, prompt string) error {
	return c.sendJSON(ctx, http.MethodPut, "/prompt", systemPromptRequest{Key: key, Prompt: prompt}, nil)
}

// Memories lists the facts the backend has remembered about the user.
func (c *Client) Memories(ctx context.Context) ([]string, error) {
	var out memoriesResponse
	if err := c.getJSON(ctx, "/memories", &out); err != nil {
		return nil, err
	}
	return out.Memories, nil
}

// SubmitOnboarding stores the onboarding record.
func (c *Client) SubmitOnboarding(ctx context.Context, data OnboardingData) error {
	return c.sendJSON(ctx, http.MethodPost, "/onboarding", data, nil)
}

// UserDetails fetches the stored onboarding record.
func (c *Client) UserDetails(ctx context.Context) (OnboardingData, error) {
	var out OnboardingData
	err := c.getJSON(ctx, "/user/details", &out)
	return out, err
}

// DeleteUser removes the stored user record.
func (c *Client) DeleteUser(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/user", nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// Disasters lists the disaster kinds the backend knows about.
func (c *Client) Disasters(ctx context.Context) ([]string, error) {
	var out disastersResponse
	if err := c.getJSON(ctx, "/disasters", &out); err != nil {
		return nil, err
	}
	return out.Disasters, nil
}

// ActiveAlerts lists active weather-service alert headlines for a position.
func (c *Client) ActiveAlerts(ctx context.Context, latitude, longitude float64) ([]string, error) {
	path := fmt.Sprintf("/active-alerts?latitude=%g&longitude=%g", latitude, longitude)
	var out alertsResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}

// DisasterContext fetches the active disaster context.
func (c *Client) DisasterContext(ctx context.Context) (DisasterContext, error) {
	var out DisasterContext
	err := c.getJSON(ctx, "/disaster-context", &out)
	return out, err
}

// SetDisasterContext pins the conversation to a disaster and phase.
func (c *Client) SetDisasterContext(ctx context.Context, dc DisasterContext) error {
	return c.sendJSON(ctx, http.MethodPost, "/disaster-context", dc, nil)
}

// ClearDisasterContext removes the active disaster context.
func (c *Client) ClearDisasterContext(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/disaster-context", nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.opts.cfID != "" || c.opts.cfSecret != "" {
		req.Header.Set("CF-Access-Client-Id", c.opts.cfID)
		req.Header.Set("CF-Access-Client-Secret", c.opts.cfSecret)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

// doJSON runs the request, enforces a 2xx status, and decodes the body into
// out when out is non-nil.
func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.transportErr(0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return c.transportErr(resp.StatusCode, nil)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.transportErr(0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) waitLimiter(ctx context.Context) error {
	if c.opts.limiter == nil {
		return nil
	}
	return c.opts.limiter.Wait(ctx)
}

func (c *Client) transportErr(status int, err error) error {
	te := &TransportError{Status: status, Err: err}
	if c.opts.logger != nil {
		c.opts.logger.Error("backend request failed", "status", status, "error", err)
	}
	return te
}
