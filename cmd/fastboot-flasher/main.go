package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bigbag/fastboot-flasher/internal/detect"
	"github.com/bigbag/fastboot-flasher/internal/fastboot"
	"github.com/bigbag/fastboot-flasher/internal/serial"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	portFlag       string
	baudFlag       int
	timeoutFlag    time.Duration
	verboseFlag    bool
	rebootFlag     bool
	bootloaderFlag bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fastboot-flasher",
		Short: "Flash devices over the fastboot protocol",
		Long: `Fastboot Flasher is a host-side tool for reflashing devices that expose
a fastboot bootloader over a serial link (e.g. U-Boot's UART fastboot).

It speaks the synchronous command/reply protocol: getvar queries, the
two-phase download handshake, flash, erase and reboot.`,
	}
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "Serial port (auto-detect if not specified)")
	rootCmd.PersistentFlags().IntVarP(&baudFlag, "baud", "b", serial.DefaultBaudRate, "Baud rate")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", serial.DefaultReadTimeout, "Per-read timeout before the reply loop retries")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print protocol commands as they are sent")

	flashCmd := &cobra.Command{
		Use:   "flash <partition> <image>",
		Short: "Download an image and flash it to a partition",
		Long: `Download an image into the device's memory buffer and flash it to the
named partition. The partition name is device-defined (e.g. "boot",
"mmc0:1").`,
		Args: cobra.ExactArgs(2),
		RunE: runFlash,
	}
	flashCmd.Flags().BoolVar(&rebootFlag, "reboot", false, "Reboot the device after flashing")

	eraseCmd := &cobra.Command{
		Use:   "erase <partition>",
		Short: "Erase a partition",
		Args:  cobra.ExactArgs(1),
		RunE:  runErase,
	}

	getvarCmd := &cobra.Command{
		Use:   "getvar <name>",
		Short: "Query a fastboot variable",
		Args:  cobra.ExactArgs(1),
		RunE:  runGetvar,
	}

	downloadCmd := &cobra.Command{
		Use:   "download <image>",
		Short: "Stage an image in the device's memory buffer",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}

	bootCmd := &cobra.Command{
		Use:   "boot <image>",
		Short: "Download an image and boot it without flashing",
		Args:  cobra.ExactArgs(1),
		RunE:  runBoot,
	}

	rebootCmd := &cobra.Command{
		Use:   "reboot",
		Short: "Reboot the device",
		RunE:  runReboot,
	}
	rebootCmd.Flags().BoolVar(&bootloaderFlag, "bootloader", false, "Reboot back into the bootloader")

	continueCmd := &cobra.Command{
		Use:   "continue",
		Short: "Resume the device's normal boot flow",
		RunE:  runContinue,
	}

	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Scan serial ports for fastboot devices",
		RunE:  runDetect,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		RunE:  runList,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fastboot-flasher %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}

	rootCmd.AddCommand(flashCmd, eraseCmd, getvarCmd, downloadCmd, bootCmd,
		rebootCmd, continueCmd, detectCmd, listCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openClient opens the configured (or auto-detected) port and builds a
// client on it. The caller owns the returned port.
func openClient(opts ...fastboot.Option) (*fastboot.Client, *serial.Port, error) {
	portName := portFlag
	if portName == "" {
		fmt.Println("Detecting device...")
		result, err := detect.DetectDevice(baudFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("device detection failed: %w", err)
		}
		portName = result.Port
		fmt.Printf("Found fastboot device on %s\n", result.Port)
	}

	port, err := serial.Open(portName, baudFlag, serial.WithReadTimeout(timeoutFlag))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open port: %w", err)
	}

	if err := port.Flush(); err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("failed to flush port: %w", err)
	}

	if verboseFlag {
		opts = append(opts, fastboot.WithLogger(stderrLogger{}))
	}

	fmt.Printf("Port: %s @ %d baud\n", portName, baudFlag)
	return fastboot.New(port, opts...), port, nil
}

// newBar builds the byte progress bar fed by the client's progress
// callback during downloads.
func newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100),
		progressbar.OptionClearOnFinish(),
	)
}

func runFlash(cmd *cobra.Command, args []string) error {
	partition, imagePath := args[0], args[1]

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}
	fmt.Printf("Image: %s (%d bytes)\n", imagePath, len(image))

	bar := newBar(len(image))
	client, port, err := openClient(fastboot.WithProgress(func(sent, total int) {
		bar.Set(sent)
	}))
	if err != nil {
		return err
	}
	defer port.Close()

	if v, err := client.GetVar("version"); err == nil {
		fmt.Printf("Bootloader fastboot version: %s\n", v)
	}

	fmt.Printf("Downloading %d bytes...\n", len(image))
	if err := client.Download(image); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	bar.Finish()

	fmt.Printf("Flashing %s...\n", partition)
	if err := client.Flash(partition); err != nil {
		return fmt.Errorf("flash failed: %w", err)
	}
	fmt.Println("Flash complete!")

	if rebootFlag {
		fmt.Println("Rebooting device...")
		if err := client.Reboot(); err != nil {
			fmt.Printf("Warning: reboot failed: %v\n", err)
		}
	}

	return nil
}

func runErase(cmd *cobra.Command, args []string) error {
	partition := args[0]

	client, port, err := openClient()
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("Erasing %s...\n", partition)
	if err := client.Erase(partition); err != nil {
		return fmt.Errorf("erase failed: %w", err)
	}
	fmt.Println("Erase complete!")
	return nil
}

func runGetvar(cmd *cobra.Command, args []string) error {
	client, port, err := openClient()
	if err != nil {
		return err
	}
	defer port.Close()

	value, err := client.GetVar(args[0])
	if err != nil {
		return fmt.Errorf("getvar failed: %w", err)
	}
	fmt.Printf("%s: %s\n", args[0], value)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	bar := newBar(len(image))
	client, port, err := openClient(fastboot.WithProgress(func(sent, total int) {
		bar.Set(sent)
	}))
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("Downloading %d bytes...\n", len(image))
	if err := client.Download(image); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	bar.Finish()
	fmt.Println("Download complete!")
	return nil
}

func runBoot(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	bar := newBar(len(image))
	client, port, err := openClient(fastboot.WithProgress(func(sent, total int) {
		bar.Set(sent)
	}))
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("Downloading %d bytes...\n", len(image))
	if err := client.Download(image); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	bar.Finish()

	fmt.Println("Booting image...")
	if err := client.Boot(); err != nil {
		return fmt.Errorf("boot failed: %w", err)
	}
	return nil
}

func runReboot(cmd *cobra.Command, args []string) error {
	client, port, err := openClient()
	if err != nil {
		return err
	}
	defer port.Close()

	if bootloaderFlag {
		fmt.Println("Rebooting into bootloader...")
		return client.RebootBootloader()
	}
	fmt.Println("Rebooting device...")
	return client.Reboot()
}

func runContinue(cmd *cobra.Command, args []string) error {
	client, port, err := openClient()
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Println("Resuming boot...")
	return client.Continue()
}

func runDetect(cmd *cobra.Command, args []string) error {
	if portFlag != "" {
		result, err := detect.DetectOnPort(portFlag, baudFlag)
		if err != nil {
			return fmt.Errorf("failed to detect device on %s: %w", portFlag, err)
		}
		printDeviceInfo(result)
		return nil
	}

	fmt.Println("Scanning for fastboot devices...")
	devices, err := detect.ListDevices(baudFlag)
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No fastboot devices found")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("Device %d:\n", i+1)
		printDeviceInfo(&d)
		fmt.Println()
	}

	return nil
}

func printDeviceInfo(d *detect.Result) {
	fmt.Printf("  Port:     %s\n", d.Port)
	fmt.Printf("  Version:  %s\n", d.Version)
	if d.Product != "" {
		fmt.Printf("  Product:  %s\n", d.Product)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	fmt.Println("Available serial ports:")
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}

	return nil
}

// stderrLogger prints protocol diagnostics when --verbose is set.
type stderrLogger struct{}

func (stderrLogger) Debug(msg string, kv ...interface{}) {
	fmt.Fprintln(os.Stderr, append([]interface{}{"debug:", msg}, kv...)...)
}

func (stderrLogger) Error(msg string, kv ...interface{}) {
	fmt.Fprintln(os.Stderr, append([]interface{}{"error:", msg}, kv...)...)
}
