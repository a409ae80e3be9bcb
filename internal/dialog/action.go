package dialog

import "strings"

// Callback payload prefixes understood by DecodePayload.
const (
	PrefixMode          = "mode:"
	PrefixAccount       = "acct:"
	PrefixFilterAccount = "filter_acct:"
	PayloadCancel       = "cancel"
)

// Action is a decoded user input. The concrete types below are the only
// implementations.
type Action interface {
	kind() actionKind
}

type (
	// EnterText is a free-text message.
	EnterText struct{ Text string }

	// SelectMode is a tap on a payment mode button.
	SelectMode struct{ Value string }

	// SelectAccount is a tap on an account button.
	SelectAccount struct{ Value string }

	// FilterByAccount asks for the account view. The builder never consumes it.
	FilterByAccount struct{ Value string }

	// Cancel abandons the entry under construction.
	Cancel struct{}
)

type actionKind int

const (
	kindText actionKind = iota
	kindMode
	kindAccount
	kindFilter
	kindCancel
)

func (EnterText) kind() actionKind       { return kindText }
func (SelectMode) kind() actionKind      { return kindMode }
func (SelectAccount) kind() actionKind   { return kindAccount }
func (FilterByAccount) kind() actionKind { return kindFilter }
func (Cancel) kind() actionKind          { return kindCancel }

// DecodePayload turns a button payload into an action. Unknown payloads and
// payloads with an empty value are reported with ok=false.
func DecodePayload(payload string) (Action, bool) {
	payload = strings.TrimSpace(payload)
	switch {
	case payload == PayloadCancel:
		return Cancel{}, true
	case strings.HasPrefix(payload, PrefixFilterAccount):
		if v := strings.TrimPrefix(payload, PrefixFilterAccount); v != "" {
			return FilterByAccount{Value: v}, true
		}
	case strings.HasPrefix(payload, PrefixMode):
		if v := strings.TrimPrefix(payload, PrefixMode); v != "" {
			return SelectMode{Value: v}, true
		}
	case strings.HasPrefix(payload, PrefixAccount):
		if v := strings.TrimPrefix(payload, PrefixAccount); v != "" {
			return SelectAccount{Value: v}, true
		}
	}
	return nil, false
}

// EncodeMode, EncodeAccount and EncodeFilter build button payloads.
func EncodeMode(v string) string    { return PrefixMode + v }
func EncodeAccount(v string) string { return PrefixAccount + v }
func EncodeFilter(v string) string  { return PrefixFilterAccount + v }
