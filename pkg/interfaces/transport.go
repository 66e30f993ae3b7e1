package interfaces

import (
	"context"

	"badgerbot/pkg/types"
)

// ReplyTransport delivers replies to the chat platform and edits them in
// place. The wire protocol behind it (gateway connection, sharding, rate
// limiting) is outside this system's contract.
type ReplyTransport interface {
	// Reply answers the interaction identified by interactionID with a new
	// message and returns a handle for later in-place edits.
	Reply(ctx context.Context, interactionID string, reply types.Reply) (types.ReplyHandle, error)

	// Edit replaces the content and controls of an existing reply.
	Edit(ctx context.Context, handle types.ReplyHandle, page types.Page, controls types.ControlSet) error

	// EditControls replaces only the controls of an existing reply. Used
	// for the expiry-driven disable edit.
	EditControls(ctx context.Context, handle types.ReplyHandle, controls types.ControlSet) error

	// ReplyEphemeral answers with a caller-only-visible message. Used for
	// ownership, cooldown and staleness rejections.
	ReplyEphemeral(ctx context.Context, interactionID string, content string) error
}
