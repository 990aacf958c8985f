// Package resqtalk is the client core of the ResQTalk emergency-assistance
// chat system: a tool registry and manifest builder, a streamed-response
// consumer, tool-call extraction and dispatch, and a backend HTTP client.
//
// # Overview
//
// The backend generates replies as a text/event-stream of `data: ` framed
// lines. A reply may embed a tool-call directive (a JSON object with
// "name" and "parameters" keys) asking the client to run a local action
// (sound a siren, flash the screen, fetch the current location, append to a
// checklist). This package turns that protocol into Go calls:
//
//	register tools → Manifest → GenerateText → StreamSession deltas →
//	Extract → Dispatch → conversation message.
//
// Session ties the pipeline together for one conversation and enforces the
// at-most-one-in-flight-prompt rule; Recorder owns the voice-capture state
// machine feeding GenerateVoice.
//
// # Key properties
//
//   - The registry is append-only; a name registered twice is a caller
//     error that surfaces as ErrAmbiguousTool at dispatch, never silently.
//   - Malformed directives are not errors: the reply text falls back to
//     plain conversational display.
//   - Stream failures preserve the partial reply for display; errors never
//     escape the consumer undecorated (see TransportError).
//
// # Example
//
//	reg := resqtalk.NewRegistry()
//	reg.Register(resqtalk.NewVoidTool("playSound", "Play a siren", nil,
//		func(context.Context, map[string]any) error { return siren.Play() },
//	))
//	client := resqtalk.NewClient("http://localhost:8000")
//	sess := resqtalk.NewSession(client, reg)
//	msgs, err := sess.Submit(ctx, "Alert everyone nearby!")
package resqtalk
