// Package detect discovers fastboot devices by probing serial ports with
// a getvar exchange under a short deadline.
package detect

import (
	"fmt"
	"time"

	"github.com/bigbag/fastboot-flasher/internal/fastboot"
	"github.com/bigbag/fastboot-flasher/internal/serial"
)

// probeDeadline bounds how long a silent port can stall a probe.
const probeDeadline = 2 * time.Second

// Result represents a detected fastboot device.
type Result struct {
	Port    string
	Product string
	Version string
}

// DetectDevice tries to detect a fastboot device on available ports.
// Returns the first device that answers a getvar probe, or an error.
func DetectDevice(baudRate int) (*Result, error) {
	ports, err := serial.ListPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("no serial ports found")
	}

	var lastErr error
	for _, portName := range ports {
		result, err := tryPort(portName, baudRate)
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("no fastboot device found (last error: %w)", lastErr)
	}
	return nil, fmt.Errorf("no fastboot device found")
}

// DetectOnPort tries to detect a fastboot device on a specific port.
func DetectOnPort(portName string, baudRate int) (*Result, error) {
	return tryPort(portName, baudRate)
}

// ListDevices scans all ports and returns every device that answers.
func ListDevices(baudRate int) ([]Result, error) {
	ports, err := serial.ListPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}

	var results []Result
	for _, portName := range ports {
		result, err := tryPort(portName, baudRate)
		if err == nil {
			results = append(results, *result)
		}
	}

	return results, nil
}

func tryPort(portName string, baudRate int) (*Result, error) {
	// The deadline turns a silent port into a fatal transport error, so
	// the probe returns instead of retrying reads forever.
	port, err := serial.Open(portName, baudRate,
		serial.WithReadTimeout(200*time.Millisecond),
		serial.WithDeadline(probeDeadline),
	)
	if err != nil {
		return nil, err
	}
	defer port.Close()

	if err := port.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush port: %w", err)
	}

	client := fastboot.New(port)

	version, err := client.GetVar("version")
	if err != nil {
		return nil, fmt.Errorf("no fastboot on %s: %w", portName, err)
	}

	result := &Result{
		Port:    portName,
		Version: version,
	}

	// Older bootloaders don't implement the product variable; the probe
	// already succeeded, so a failure here is not fatal.
	if product, err := client.GetVar("product"); err == nil {
		result.Product = product
	}

	return result, nil
}
