package protocol

import "testing"

func TestCommands_WireFormat(t *testing.T) {
	tests := []struct {
		name     string
		cmd      []byte
		expected string
	}{
		{"getvar", GetVarCommand("version"), "getvar:version"},
		{"getvar empty", GetVarCommand(""), "getvar:"},
		{"flash", FlashCommand("boot"), "flash:boot"},
		{"flash qualified", FlashCommand("mmc0:dead"), "flash:mmc0:dead"},
		{"erase", EraseCommand("userdata"), "erase:userdata"},
		{"boot", BootCommand(), "boot"},
		{"continue", ContinueCommand(), "continue"},
		{"reboot", RebootCommand(), "reboot"},
		{"reboot-bootloader", RebootBootloaderCommand(), "reboot-bootloader"},
	}

	for _, tc := range tests {
		if string(tc.cmd) != tc.expected {
			t.Errorf("%s command = %q, want %q", tc.name, tc.cmd, tc.expected)
		}
	}
}

func TestDownloadCommand_HexPadding(t *testing.T) {
	tests := []struct {
		size     uint32
		expected string
	}{
		{0, "download:00000000"},
		{1024, "download:00000400"},
		{0xDEADBEEF, "download:deadbeef"},
		{0xFFFFFFFF, "download:ffffffff"},
	}

	for _, tc := range tests {
		if got := string(DownloadCommand(tc.size)); got != tc.expected {
			t.Errorf("DownloadCommand(%d) = %q, want %q", tc.size, got, tc.expected)
		}
	}
}

func TestDownloadCommand_RoundTrip(t *testing.T) {
	// The size a DownloadCommand announces must decode back through a
	// DATA reply carrying the same digits.
	for _, size := range []uint32{0, 1, 512, 0x10000, 0xFFFFFFFF} {
		cmd := DownloadCommand(size)
		reply, ok := ParseReply(append([]byte("DATA"), cmd[len("download:"):]...))
		if !ok || reply.Kind != Data {
			t.Fatalf("DATA echo of DownloadCommand(%d) did not decode", size)
		}
		if reply.Size != size {
			t.Errorf("round trip of %d = %d", size, reply.Size)
		}
	}
}
