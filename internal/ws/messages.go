package ws

import (
	"encoding/json"
	"fmt"

	"church-hub/internal/models"
)

// MessageType identifies the kind of a channel message.
type MessageType string

// Server-to-client message types.
const (
	MessagePresentationState    MessageType = "presentation_state"
	MessageMIDIMessage          MessageType = "midi_message"
	MessageMIDIConnectionStatus MessageType = "midi_connection_status"
	MessageMIDIDevices          MessageType = "midi_devices"
	MessagePong                 MessageType = "pong"
)

// Client-to-server message types.
const (
	MessageRegister       MessageType = "register"
	MessagePing           MessageType = "ping"
	MessageMIDISetLED     MessageType = "midi_set_led"
	MessageMIDISetAllLEDs MessageType = "midi_set_all_leds"
)

// Envelope is the wire shape of every channel message.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal builds an envelope with the given payload.
func Marshal(msgType MessageType, payload interface{}) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// RegisterPayload identifies a connecting client surface.
type RegisterPayload struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// inboundMessage is the decoded union of client-to-server messages. The
// compiler checks the dispatch switch in the read pump stays exhaustive over
// these variants.
type inboundMessage interface{ inbound() }

type registerInbound RegisterPayload

type pingInbound struct{}

type setLEDInbound models.SetLEDInput

type setAllLEDsInbound models.SetAllLEDsInput

func (registerInbound) inbound()   {}
func (pingInbound) inbound()       {}
func (setLEDInbound) inbound()     {}
func (setAllLEDsInbound) inbound() {}

// decodeInbound parses one client message into its typed variant.
func decodeInbound(data []byte) (inboundMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	switch env.Type {
	case MessageRegister:
		var msg registerInbound
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &msg); err != nil {
				return nil, fmt.Errorf("malformed register payload: %w", err)
			}
		}
		return msg, nil
	case MessagePing:
		return pingInbound{}, nil
	case MessageMIDISetLED:
		var msg setLEDInbound
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, fmt.Errorf("malformed midi_set_led payload: %w", err)
		}
		return msg, nil
	case MessageMIDISetAllLEDs:
		var msg setAllLEDsInbound
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, fmt.Errorf("malformed midi_set_all_leds payload: %w", err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}
