// Package fastboot implements the host side of the fastboot flashing
// protocol: ASCII commands out, 4-byte-token replies back, with a raw
// payload phase for downloads. See u-boot/doc/README.android-fastboot-protocol.
package fastboot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/bigbag/fastboot-flasher/internal/protocol"
)

// Transport is the byte stream a Client talks over. It owns no protocol
// knowledge. Reads may return fewer bytes than requested; a read error
// must be classifiable as a timeout (Timeout() bool, or wrapping
// os.ErrDeadlineExceeded) for the reply loop to keep waiting on a slow
// device instead of failing.
type Transport interface {
	io.Reader
	io.Writer
}

// Client speaks the fastboot host protocol over a Transport it owns
// exclusively. The protocol is strictly half-duplex: every operation
// blocks until a terminal reply or a fatal transport error, and a second
// command must never be issued before the previous one resolves. The
// client holds no protocol state between operations, so a multi-threaded
// embedding only has to serialize calls.
//
// There is no cancellation primitive; a stuck operation can only be
// aborted by the Transport erroring out from beneath it (closing the
// port, an overall deadline, etc.).
type Client struct {
	t      Transport
	config Config
}

// New creates a Client for the given transport and options.
func New(t Transport, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{t: t, config: cfg}
}

// GetVar queries a fastboot variable and returns its value.
//
// NOTE: fastboot variables are not U-Boot environment variables.
func (c *Client) GetVar(name string) (string, error) {
	reply, err := c.exchange(protocol.GetVarCommand(name))
	if err != nil {
		return "", err
	}
	switch reply.Kind {
	case protocol.Okay:
		return reply.Text, nil
	case protocol.Fail:
		return "", &RemoteError{Command: "getvar", Message: reply.Text}
	default:
		return "", &UnexpectedReplyError{Command: "getvar", Kind: reply.Kind}
	}
}

// Download stages data in the device's memory buffer for a subsequent
// flash or boot command.
//
// The handshake has two phases: the host announces the payload length
// and the device must acknowledge with a DATA reply carrying exactly
// that length before a single payload byte goes out. A mismatched
// acknowledgement aborts the transfer; the size is never adjusted.
func (c *Client) Download(data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("payload too large for download command: %d bytes", len(data))
	}

	size := uint32(len(data))
	reply, err := c.exchange(protocol.DownloadCommand(size))
	if err != nil {
		return err
	}
	switch reply.Kind {
	case protocol.Data:
		if reply.Size != size {
			return &SizeMismatchError{Requested: size, Acked: reply.Size}
		}
	case protocol.Fail:
		return &RemoteError{Command: "download", Message: reply.Text}
	default:
		return &UnexpectedReplyError{Command: "download", Kind: reply.Kind}
	}

	reply, err = c.sendPayload(data)
	if err != nil {
		return err
	}
	switch reply.Kind {
	case protocol.Okay:
		return nil
	case protocol.Fail:
		return &RemoteError{Command: "download", Message: reply.Text}
	default:
		return &UnexpectedReplyError{Command: "download", Kind: reply.Kind}
	}
}

// Flash writes the previously downloaded payload to a partition.
func (c *Client) Flash(partition string) error {
	return c.simpleCommand("flash", protocol.FlashCommand(partition))
}

// Erase erases a partition.
func (c *Client) Erase(partition string) error {
	return c.simpleCommand("erase", protocol.EraseCommand(partition))
}

// Boot boots the previously downloaded image without flashing it.
func (c *Client) Boot() error {
	return c.simpleCommand("boot", protocol.BootCommand())
}

// Continue resumes the device's normal boot flow.
func (c *Client) Continue() error {
	return c.simpleCommand("continue", protocol.ContinueCommand())
}

// Reboot reboots the device.
func (c *Client) Reboot() error {
	return c.simpleCommand("reboot", protocol.RebootCommand())
}

// RebootBootloader reboots the device back into its bootloader.
func (c *Client) RebootBootloader() error {
	return c.simpleCommand("reboot-bootloader", protocol.RebootBootloaderCommand())
}

// simpleCommand runs a single-exchange operation whose only success
// reply is OKAY.
func (c *Client) simpleCommand(name string, cmd []byte) error {
	reply, err := c.exchange(cmd)
	if err != nil {
		return err
	}
	switch reply.Kind {
	case protocol.Okay:
		return nil
	case protocol.Fail:
		return &RemoteError{Command: name, Message: reply.Text}
	default:
		return &UnexpectedReplyError{Command: name, Kind: reply.Kind}
	}
}

// exchange writes one command and blocks for the reply.
func (c *Client) exchange(cmd []byte) (protocol.Reply, error) {
	c.logDebug("send command", "cmd", string(cmd))
	if err := c.writeAll(cmd); err != nil {
		return protocol.Reply{}, err
	}
	return c.readReply()
}

// sendPayload streams the raw bytes of the download phase, then blocks
// for the device's final reply. Writes go out in bounded chunks so the
// progress observer sees bytes-transferred-so-far.
func (c *Client) sendPayload(data []byte) (protocol.Reply, error) {
	c.logDebug("send payload", "bytes", len(data))
	for sent := 0; sent < len(data); {
		end := sent + c.config.ChunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := c.writeAll(data[sent:end]); err != nil {
			return protocol.Reply{}, err
		}
		sent = end
		c.reportProgress(sent, len(data))
	}
	return c.readReply()
}

// writeAll writes the complete buffer or fails. Write errors are always
// fatal, never retried: re-sending on a half-duplex link would desync
// the exchange.
func (c *Client) writeAll(p []byte) error {
	for written := 0; written < len(p); {
		n, err := c.t.Write(p[written:])
		if err != nil {
			return fmt.Errorf("transport write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("transport write: %w", io.ErrNoProgress)
		}
		written += n
	}
	return nil
}

// readReply blocks until the device produces a reply. The protocol is
// synchronous and the device may take arbitrarily long, so a timed-out
// read is a liveness signal, not an error: the read is reissued without
// bound. Any other read error is fatal.
func (c *Client) readReply() (protocol.Reply, error) {
	buf := make([]byte, protocol.MaxReplyLen)
	for {
		n, err := c.t.Read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return protocol.Reply{}, fmt.Errorf("transport read: %w", err)
		}
		if n == 0 {
			continue
		}

		reply, ok := protocol.ParseReply(buf[:n])
		if !ok {
			c.logError("unrecognized reply", "raw", reply.Text)
		}
		return reply, nil
	}
}

// isTimeout reports whether a transport error is a read timeout.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return false
}

func (c *Client) reportProgress(sent, total int) {
	if c.config.Progress != nil {
		c.config.Progress(sent, total)
	}
}

func (c *Client) logDebug(msg string, kv ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, kv...)
	}
}

func (c *Client) logError(msg string, kv ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, kv...)
	}
}
