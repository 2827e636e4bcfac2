// Package chat defines the JSON envelopes exchanged with clients.
package chat

import "encoding/json"

// envelopeTypeChat is the only envelope type the relay speaks, in both
// directions.
const envelopeTypeChat = "chat"

// inboundEnvelope is the frame clients send: {"type":"chat","message":<text>}.
type inboundEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// outboundEnvelope carries the full history window to clients:
// {"type":"chat","messages":[...]}.
type outboundEnvelope struct {
	Type     string    `json:"type"`
	Messages []Message `json:"messages"`
}

// DecodeInbound parses a raw client frame and returns the message text.
// Malformed JSON, a non-chat type, or a non-string message body all report
// ok=false; such frames are dropped without any reply to the sender.
func DecodeInbound(raw []byte) (text string, ok bool) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", false
	}
	if envelope.Type != envelopeTypeChat {
		return "", false
	}
	return envelope.Message, true
}

// EncodeHistory marshals the history window into the outbound chat envelope.
func EncodeHistory(messages []Message) ([]byte, error) {
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(outboundEnvelope{
		Type:     envelopeTypeChat,
		Messages: messages,
	})
}
