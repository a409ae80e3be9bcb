package dialog

// State is a step of the entry dialogue.
type State int

const (
	AwaitingAmount State = iota
	AwaitingMode
	AwaitingAccount
	AwaitingNote
	Complete
	Cancelled
)

var stateNames = map[State]string{
	AwaitingAmount:  "awaiting_amount",
	AwaitingMode:    "awaiting_mode",
	AwaitingAccount: "awaiting_account",
	AwaitingNote:    "awaiting_note",
	Complete:        "complete",
	Cancelled:       "cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool {
	return s == Complete || s == Cancelled
}

type transitionKey struct {
	from State
	on   actionKind
}

// transitions lists every legal move. Input not listed here is ignored.
var transitions = map[transitionKey]State{
	{AwaitingAmount, kindText}:     AwaitingMode,
	{AwaitingMode, kindMode}:       AwaitingAccount,
	{AwaitingMode, kindText}:       AwaitingMode, // a new amount replaces the entry
	{AwaitingAccount, kindAccount}: AwaitingNote,
	{AwaitingAccount, kindText}:    AwaitingMode, // a new amount replaces the entry
	{AwaitingNote, kindText}:       Complete,

	{AwaitingAmount, kindCancel}:  Cancelled,
	{AwaitingMode, kindCancel}:    Cancelled,
	{AwaitingAccount, kindCancel}: Cancelled,
	{AwaitingNote, kindCancel}:    Cancelled,
}

func next(from State, a Action) (State, bool) {
	to, ok := transitions[transitionKey{from: from, on: a.kind()}]
	return to, ok
}
