package protocol

import (
	"strconv"
	"strings"
)

// MaxReplyLen is the largest reply frame the protocol permits. Every
// reply is designed to fit a single small transfer; anything longer is a
// device-side violation.
const MaxReplyLen = 64

// PrefixLen is the length of the classification token that starts every
// reply.
const PrefixLen = 4

// ReplyKind classifies a reply by its 4-byte token.
type ReplyKind int

const (
	// Okay means the command succeeded; Text may carry a value.
	Okay ReplyKind = iota
	// Info is an informational message from the device.
	Info
	// Fail means the command was rejected; Text carries the reason.
	Fail
	// Data means the device is ready to receive Size bytes of payload.
	Data
)

// String returns the wire token for the kind.
func (k ReplyKind) String() string {
	switch k {
	case Okay:
		return "OKAY"
	case Info:
		return "INFO"
	case Fail:
		return "FAIL"
	case Data:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Reply is a decoded device reply.
type Reply struct {
	Kind ReplyKind
	Text string // trailing text for OKAY/INFO/FAIL
	Size uint32 // announced payload length for DATA
}

// ParseReply decodes a raw reply buffer. The first 4 bytes must be one of
// the OKAY/INFO/FAIL/DATA tokens; the remainder is decoded as UTF-8 with
// invalid sequences replaced, so malformed bytes never abort decoding.
//
// The second result reports whether the buffer carried a well-formed
// reply. A short buffer, an unrecognized token, or a DATA reply whose
// size field is not valid hex all come back as a Fail reply with
// ok=false, so callers can still surface a message while flagging the
// anomaly.
func ParseReply(raw []byte) (Reply, bool) {
	if len(raw) < PrefixLen {
		return Reply{Kind: Fail, Text: lossyString(raw)}, false
	}

	rest := lossyString(raw[PrefixLen:])

	switch string(raw[:PrefixLen]) {
	case "OKAY":
		return Reply{Kind: Okay, Text: rest}, true
	case "INFO":
		return Reply{Kind: Info, Text: rest}, true
	case "FAIL":
		return Reply{Kind: Fail, Text: rest}, true
	case "DATA":
		size, err := strconv.ParseUint(rest, 16, 32)
		if err != nil {
			return Reply{Kind: Fail, Text: "Failed to decode DATA size"}, false
		}
		return Reply{Kind: Data, Size: uint32(size)}, true
	default:
		return Reply{Kind: Fail, Text: lossyString(raw)}, false
	}
}

// lossyString converts raw bytes to a string, replacing invalid UTF-8
// sequences with the replacement rune.
func lossyString(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}
