package protocol

import "testing"

func TestParseReply_Okay(t *testing.T) {
	tests := []struct {
		raw  string
		text string
	}{
		{"OKAY", ""},
		{"OKAY1.0", "1.0"},
		{"OKAYyes", "yes"},
		{"OKAY0.4 (release)", "0.4 (release)"},
	}

	for _, tc := range tests {
		reply, ok := ParseReply([]byte(tc.raw))
		if !ok {
			t.Errorf("ParseReply(%q) ok = false, want true", tc.raw)
		}
		if reply.Kind != Okay {
			t.Errorf("ParseReply(%q) kind = %v, want Okay", tc.raw, reply.Kind)
		}
		if reply.Text != tc.text {
			t.Errorf("ParseReply(%q) text = %q, want %q", tc.raw, reply.Text, tc.text)
		}
	}
}

func TestParseReply_Info(t *testing.T) {
	reply, ok := ParseReply([]byte("INFOerasing flash"))
	if !ok {
		t.Fatal("ParseReply ok = false, want true")
	}
	if reply.Kind != Info {
		t.Errorf("kind = %v, want Info", reply.Kind)
	}
	if reply.Text != "erasing flash" {
		t.Errorf("text = %q, want %q", reply.Text, "erasing flash")
	}
}

func TestParseReply_Fail(t *testing.T) {
	tests := []struct {
		raw  string
		text string
	}{
		{"FAIL", ""},
		{"FAILunknown partition", "unknown partition"},
	}

	for _, tc := range tests {
		reply, ok := ParseReply([]byte(tc.raw))
		if !ok {
			t.Errorf("ParseReply(%q) ok = false, want true", tc.raw)
		}
		if reply.Kind != Fail {
			t.Errorf("ParseReply(%q) kind = %v, want Fail", tc.raw, reply.Kind)
		}
		if reply.Text != tc.text {
			t.Errorf("ParseReply(%q) text = %q, want %q", tc.raw, reply.Text, tc.text)
		}
	}
}

func TestParseReply_Data(t *testing.T) {
	tests := []struct {
		raw  string
		size uint32
	}{
		{"DATA00000000", 0},
		{"DATA00000400", 0x400},
		{"DATA0000ffff", 0xFFFF},
		{"DATAffffffff", 0xFFFFFFFF},
	}

	for _, tc := range tests {
		reply, ok := ParseReply([]byte(tc.raw))
		if !ok {
			t.Errorf("ParseReply(%q) ok = false, want true", tc.raw)
		}
		if reply.Kind != Data {
			t.Errorf("ParseReply(%q) kind = %v, want Data", tc.raw, reply.Kind)
		}
		if reply.Size != tc.size {
			t.Errorf("ParseReply(%q) size = 0x%X, want 0x%X", tc.raw, reply.Size, tc.size)
		}
	}
}

func TestParseReply_DataBadSize(t *testing.T) {
	badSizes := []string{"DATA", "DATAxyz", "DATA000004zz", "DATA-0000400", "DATA 0000400"}

	for _, raw := range badSizes {
		reply, ok := ParseReply([]byte(raw))
		if ok {
			t.Errorf("ParseReply(%q) ok = true, want false", raw)
		}
		if reply.Kind != Fail {
			t.Errorf("ParseReply(%q) kind = %v, want Fail", raw, reply.Kind)
		}
		if reply.Text != "Failed to decode DATA size" {
			t.Errorf("ParseReply(%q) text = %q, want decode failure message", raw, reply.Text)
		}
	}
}

func TestParseReply_UnknownPrefix(t *testing.T) {
	reply, ok := ParseReply([]byte("WHAT is this"))
	if ok {
		t.Error("ParseReply ok = true, want false")
	}
	if reply.Kind != Fail {
		t.Errorf("kind = %v, want Fail", reply.Kind)
	}
	if reply.Text != "WHAT is this" {
		t.Errorf("text = %q, want full raw text", reply.Text)
	}
}

func TestParseReply_ShortBuffer(t *testing.T) {
	for _, raw := range []string{"", "O", "OK", "OKA"} {
		reply, ok := ParseReply([]byte(raw))
		if ok {
			t.Errorf("ParseReply(%q) ok = true, want false", raw)
		}
		if reply.Kind != Fail {
			t.Errorf("ParseReply(%q) kind = %v, want Fail", raw, reply.Kind)
		}
		if reply.Text != raw {
			t.Errorf("ParseReply(%q) text = %q, want raw text", raw, reply.Text)
		}
	}
}

func TestParseReply_CaseSensitive(t *testing.T) {
	// Tokens are case-sensitive; lowercase is not a valid reply.
	reply, ok := ParseReply([]byte("okay1.0"))
	if ok {
		t.Error("ParseReply(okay1.0) ok = true, want false")
	}
	if reply.Kind != Fail {
		t.Errorf("kind = %v, want Fail", reply.Kind)
	}
}

func TestParseReply_InvalidUTF8(t *testing.T) {
	raw := append([]byte("OKAY"), 0xFF, 0xFE, 'x')
	reply, ok := ParseReply(raw)
	if !ok {
		t.Fatal("ParseReply ok = false, want true")
	}
	if reply.Kind != Okay {
		t.Errorf("kind = %v, want Okay", reply.Kind)
	}
	// Invalid sequences are replaced, never dropped entirely.
	if reply.Text == "" || reply.Text[len(reply.Text)-1] != 'x' {
		t.Errorf("text = %q, want replacement rune followed by 'x'", reply.Text)
	}
}

func TestReplyKind_String(t *testing.T) {
	tests := []struct {
		kind     ReplyKind
		expected string
	}{
		{Okay, "OKAY"},
		{Info, "INFO"},
		{Fail, "FAIL"},
		{Data, "DATA"},
		{ReplyKind(99), "UNKNOWN"},
	}

	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.expected {
			t.Errorf("ReplyKind(%d).String() = %q, want %q", tc.kind, got, tc.expected)
		}
	}
}
