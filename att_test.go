package blehal

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestATTServerRequests(t *testing.T) {
	cases := []struct {
		name string
		req  string
		want string // "" means no response
	}{
		{
			name: "exchange mtu",
			req:  "021700",
			want: "031700",
		},
		{
			name: "discover services from 1",
			req:  "100100ffff0028",
			want: "1106010005003412",
		},
		{
			name: "discover services past the end",
			req:  "100600ffff0028",
			want: "011006000a",
		},
		{
			name: "discover characteristics from 1",
			req:  "08010005000328",
			want: "090702000203003512",
		},
		{
			name: "discover characteristics from 3",
			req:  "08030005000328",
			want: "090704000a05003612",
		},
		{
			name: "discover characteristics past the end",
			req:  "08050005000328",
			want: "010805000a",
		},
		{
			name: "read by type, not a characteristic declaration",
			req:  "0801000500002a",
			want: "010801000a",
		},
		{
			name: "find information service handle",
			req:  "0401000500",
			want: "050101000028",
		},
		{
			name: "find information value handle",
			req:  "0403000500",
			want: "050103003512",
		},
		{
			name: "find information past the end",
			req:  "0406000500",
			want: "010406000a",
		},
		{
			name: "find information truncated",
			req:  "040100",
			want: "010401000a",
		},
		{
			name: "read hello value",
			req:  "0a0300",
			want: "0b6869",
		},
		{
			name: "read empty write buffer",
			req:  "0a0500",
			want: "0b",
		},
		{
			name: "read unknown handle",
			req:  "0a0900",
			want: "0b556e6b6e6f776e",
		},
		{
			name: "read truncated",
			req:  "0a03",
			want: "",
		},
		{
			name: "unhandled opcode",
			req:  "0c030000",
			want: "",
		},
	}

	for _, tt := range cases {
		srv := newATTServer("hi")
		rsp := srv.handle(unhex(t, tt.req))
		if got := fmt.Sprintf("%x", rsp); got != tt.want {
			t.Errorf("%s: handle(%s) got %q want %q", tt.name, tt.req, got, tt.want)
		}
	}
}

func TestATTServerWriteThenRead(t *testing.T) {
	srv := newATTServer("hi")

	if got := fmt.Sprintf("%x", srv.handle(unhex(t, "1205004142"))); got != "13" {
		t.Fatalf("write request: got %q want %q", got, "13")
	}
	if got := fmt.Sprintf("%x", srv.handle(unhex(t, "0a0500"))); got != "0b4142" {
		t.Errorf("read after write: got %q want %q", got, "0b4142")
	}

	// A shorter write replaces the whole stored value.
	if got := fmt.Sprintf("%x", srv.handle(unhex(t, "12050043"))); got != "13" {
		t.Fatalf("second write request: got %q want %q", got, "13")
	}
	if got := fmt.Sprintf("%x", srv.handle(unhex(t, "0a0500"))); got != "0b43" {
		t.Errorf("read after second write: got %q want %q", got, "0b43")
	}
}

func TestATTServerWriteCommand(t *testing.T) {
	srv := newATTServer("hi")

	if rsp := srv.handle(unhex(t, "52050043")); rsp != nil {
		t.Errorf("write command: got %x want no response", rsp)
	}
	if got := srv.written(); !bytes.Equal(got, []byte{0x43}) {
		t.Errorf("stored value: got %x want 43", got)
	}
}

func TestATTServerWriteLimits(t *testing.T) {
	srv := newATTServer("hi")

	// Writes to anything but the writable value are acknowledged and
	// dropped.
	if got := fmt.Sprintf("%x", srv.handle(unhex(t, "12030058"))); got != "13" {
		t.Errorf("write to read-only handle: got %q want %q", got, "13")
	}
	if got := srv.written(); len(got) != 0 {
		t.Errorf("stored after read-only write: got %x want empty", got)
	}

	// An oversized value is likewise acknowledged and dropped.
	req := append(unhex(t, "120500"), bytes.Repeat([]byte{0x61}, maxWriteLen+1)...)
	if got := fmt.Sprintf("%x", srv.handle(req)); got != "13" {
		t.Errorf("oversized write: got %q want %q", got, "13")
	}
	if got := srv.written(); len(got) != 0 {
		t.Errorf("stored after oversized write: got %x want empty", got)
	}

	// A maximum-length value fits exactly.
	req = append(unhex(t, "120500"), bytes.Repeat([]byte{0x61}, maxWriteLen)...)
	if got := fmt.Sprintf("%x", srv.handle(req)); got != "13" {
		t.Errorf("full-length write: got %q want %q", got, "13")
	}
	want := strings.Repeat("61", maxWriteLen)
	if got := fmt.Sprintf("%x", srv.written()); got != want {
		t.Errorf("stored full-length value: got %q want %q", got, want)
	}
}

func TestATTServerEmptyRequest(t *testing.T) {
	srv := newATTServer("hi")
	if rsp := srv.handle(nil); rsp != nil {
		t.Errorf("empty request: got %x want no response", rsp)
	}
}
