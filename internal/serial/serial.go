// Package serial provides the concrete fastboot transport: a serial
// port with a classifiable read timeout, for devices exposing fastboot
// over UART.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the usual rate for fastboot-over-UART consoles.
const DefaultBaudRate = 115200

// DefaultReadTimeout bounds each blocking read attempt before a timeout
// signal is raised.
const DefaultReadTimeout = 500 * time.Millisecond

// ErrDeadline is returned by Read once the configured overall deadline
// elapses without any data. It is deliberately not a timeout: it aborts
// the client's otherwise unbounded retry loop.
var ErrDeadline = fmt.Errorf("serial: no data before deadline")

// timeoutError marks a single expired read attempt. The fastboot client
// treats it as a liveness signal and reissues the read.
type timeoutError struct{}

func (timeoutError) Error() string { return "serial: read timed out" }
func (timeoutError) Timeout() bool { return true }

// Port wraps a serial port with fastboot transport semantics.
type Port struct {
	port        serial.Port
	portName    string
	baudRate    int
	readTimeout time.Duration
	deadline    time.Duration
	lastData    time.Time
}

// Option is a functional option for configuring a Port.
type Option func(*Port)

// WithReadTimeout sets the per-attempt read timeout.
func WithReadTimeout(timeout time.Duration) Option {
	return func(p *Port) {
		if timeout > 0 {
			p.readTimeout = timeout
		}
	}
}

// WithDeadline sets an overall silence deadline: if no data arrives for
// this long, Read fails with ErrDeadline instead of timing out again.
// Zero means no deadline. Used by device probing; a flashing session
// normally runs without one.
func WithDeadline(deadline time.Duration) Option {
	return func(p *Port) {
		p.deadline = deadline
	}
}

// Open opens a serial port with the specified baud rate and options.
func Open(portName string, baudRate int, opts ...Option) (*Port, error) {
	p := &Port{
		portName:    portName,
		baudRate:    baudRate,
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(p.readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	p.port = port
	p.lastData = time.Now()
	return p, nil
}

// Close closes the serial port.
func (p *Port) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Write writes data to the serial port.
func (p *Port) Write(data []byte) (int, error) {
	n, err := p.port.Write(data)
	if err != nil {
		return n, err
	}
	p.lastData = time.Now()
	return n, nil
}

// Read reads data from the serial port. An expired read attempt comes
// back as an error with Timeout() == true rather than the library's
// zero-byte success, so callers can tell silence from data.
func (p *Port) Read(buf []byte) (int, error) {
	if p.deadline > 0 && time.Since(p.lastData) > p.deadline {
		return 0, ErrDeadline
	}

	n, err := p.port.Read(buf)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, timeoutError{}
	}
	p.lastData = time.Now()
	return n, nil
}

// Flush discards any buffered input.
func (p *Port) Flush() error {
	return p.port.ResetInputBuffer()
}

// PortName returns the port name.
func (p *Port) PortName() string {
	return p.portName
}

// BaudRate returns the current baud rate.
func (p *Port) BaudRate() int {
	return p.baudRate
}

// ListPorts returns a list of available serial ports.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	return ports, nil
}
