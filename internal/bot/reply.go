package bot

import "context"

// Button is one inline keyboard button.
type Button struct {
	Text    string
	Payload string
}

// Document is a file attachment.
type Document struct {
	Name    string
	Content []byte
	Caption string
}

// Reply is one outbound action. A reply with only CallbackID set just
// acknowledges the button tap.
type Reply struct {
	ChatID int64
	Text   string

	// Buttons are rendered as rows of an inline keyboard.
	Buttons [][]Button

	// EditMessageID, when non-zero, replaces that message in place
	// instead of sending a new one.
	EditMessageID int

	CallbackID   string
	CallbackText string

	Document *Document
}

// AckOnly reports whether the reply carries nothing but a callback answer.
func (r Reply) AckOnly() bool {
	return r.CallbackID != "" && r.Text == "" && r.Document == nil
}

// Sender delivers replies to the chat transport.
type Sender interface {
	Send(ctx context.Context, r Reply) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, r Reply) error

func (f SenderFunc) Send(ctx context.Context, r Reply) error {
	return f(ctx, r)
}
