package protocol

import "fmt"

// Command constructors for the fastboot wire format. Commands are plain
// ASCII; the device never sees framing or length prefixes, so each
// constructor returns exactly the bytes that go on the wire.

// GetVarCommand builds "getvar:<name>".
func GetVarCommand(name string) []byte {
	return []byte("getvar:" + name)
}

// DownloadCommand builds "download:<8 hex digits>" announcing a payload
// of size bytes.
func DownloadCommand(size uint32) []byte {
	return []byte(fmt.Sprintf("download:%08x", size))
}

// FlashCommand builds "flash:<partition>".
func FlashCommand(partition string) []byte {
	return []byte("flash:" + partition)
}

// EraseCommand builds "erase:<partition>".
func EraseCommand(partition string) []byte {
	return []byte("erase:" + partition)
}

// BootCommand builds "boot", which boots the previously downloaded image.
func BootCommand() []byte {
	return []byte("boot")
}

// ContinueCommand builds "continue", which resumes the normal boot flow.
func ContinueCommand() []byte {
	return []byte("continue")
}

// RebootCommand builds "reboot". No separator, no argument.
func RebootCommand() []byte {
	return []byte("reboot")
}

// RebootBootloaderCommand builds "reboot-bootloader", which reboots the
// device back into its bootloader.
func RebootBootloaderCommand() []byte {
	return []byte("reboot-bootloader")
}
