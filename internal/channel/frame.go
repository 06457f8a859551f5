package channel

import "encoding/json"

// Client commands.
const (
	CommandConnect    = "CONNECT"
	CommandSend       = "SEND"
	CommandDisconnect = "DISCONNECT"
)

// Server commands.
const (
	CommandConnected = "CONNECTED"
	CommandMessage   = "MESSAGE"
	CommandReceipt   = "RECEIPT"
	CommandError     = "ERROR"
)

// Frame headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderDestination   = "destination"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderUserID        = "user-id"
	HeaderCode          = "code"
	HeaderMessage       = "message"
	HeaderContentType   = "content-type"
)

// DestinationGameInfo answers with the caller's live game snapshot.
const DestinationGameInfo = "/app/game/info"

// Error codes sent in the code header of an ERROR frame, in addition to the
// session rejection reasons.
const (
	CodeNotConnected       = "NOT_CONNECTED"
	CodeNoActiveGame       = "NO_ACTIVE_GAME"
	CodeUnknownDestination = "UNKNOWN_DESTINATION"
	CodeUnknownCommand     = "UNKNOWN_COMMAND"
	CodeBadFrame           = "BAD_FRAME"
	CodeUnavailable        = "UNAVAILABLE"
)

// Frame is one JSON message on the channel.
type Frame struct {
	Command string            `json:"command"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// Header returns the named header or "".
func (f Frame) Header(name string) string {
	return f.Headers[name]
}

func errorFrame(code, message string) Frame {
	return Frame{
		Command: CommandError,
		Headers: map[string]string{HeaderCode: code, HeaderMessage: message},
	}
}
