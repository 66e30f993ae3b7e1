package gateway

import "badgerbot/pkg/types"

// Frame operation names. Inbound frames carry events and acks; outbound
// frames carry replies and edits.
const (
	opCommand      = "command"
	opComponent    = "component"
	opAck          = "ack"
	opReply        = "reply"
	opEdit         = "edit"
	opEditControls = "edit_controls"
)

// frame is the single envelope exchanged with the event feed. Only the
// fields relevant to the frame's op are populated.
type frame struct {
	Op    string `json:"op"`
	Nonce string `json:"nonce,omitempty"`

	Command   *types.CommandEvent   `json:"command,omitempty"`
	Component *types.ComponentEvent `json:"component,omitempty"`

	InteractionID string            `json:"interaction_id,omitempty"`
	MessageID     string            `json:"message_id,omitempty"`
	Reply         *types.Reply      `json:"reply,omitempty"`
	Page          *types.Page       `json:"page,omitempty"`
	Controls      *types.ControlSet `json:"controls,omitempty"`

	Error string `json:"error,omitempty"`
}
