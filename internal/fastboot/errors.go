package fastboot

import (
	"fmt"

	"github.com/bigbag/fastboot-flasher/internal/protocol"
)

// RemoteError is a FAIL reply: the device rejected a command and the
// message is whatever reason it gave, possibly empty.
type RemoteError struct {
	Command string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected by device", e.Command)
	}
	return fmt.Sprintf("%s rejected by device: %s", e.Command, e.Message)
}

// IsRemoteError returns true if the error is a RemoteError.
func IsRemoteError(err error) bool {
	_, ok := err.(*RemoteError)
	return ok
}

// UnexpectedReplyError reports a well-formed reply of a kind the
// operation has no mapping for, e.g. a DATA reply to getvar.
type UnexpectedReplyError struct {
	Command string
	Kind    protocol.ReplyKind
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("%s: unknown failure (unexpected %s reply)", e.Command, e.Kind)
}

// SizeMismatchError indicates the device acknowledged a download with a
// size other than the one announced. The transfer is aborted before any
// payload byte is sent; the size is never renegotiated.
type SizeMismatchError struct {
	Requested uint32
	Acked     uint32
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("download size mismatch: requested 0x%08x bytes, device acknowledged 0x%08x",
		e.Requested, e.Acked)
}
