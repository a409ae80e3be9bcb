// Package bot turns transport-neutral chat events into replies. It owns
// the per-user dialogue sessions and routes each user to a fixed shard so
// that one user's events are handled strictly in order.
package bot

// EventKind tells which fields of an Event are set.
type EventKind int

const (
	EventText EventKind = iota
	EventCallback
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventCallback:
		return "callback"
	case EventCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event is one inbound interaction.
type Event struct {
	Kind   EventKind
	UserID int64
	ChatID int64

	// text and command
	Text    string
	Command string // without the leading slash
	Args    string

	// callback
	MessageID  int
	CallbackID string
	Payload    string
}

func TextEvent(userID, chatID int64, text string) Event {
	return Event{Kind: EventText, UserID: userID, ChatID: chatID, Text: text}
}

func CommandEvent(userID, chatID int64, command, args string) Event {
	return Event{Kind: EventCommand, UserID: userID, ChatID: chatID, Command: command, Args: args}
}

func CallbackEvent(userID, chatID int64, messageID int, callbackID, payload string) Event {
	return Event{
		Kind:       EventCallback,
		UserID:     userID,
		ChatID:     chatID,
		MessageID:  messageID,
		CallbackID: callbackID,
		Payload:    payload,
	}
}
