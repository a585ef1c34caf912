package blehal

import (
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bluelark/blehal/hci"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeController emulates the controller side of the socket. Writes are
// recorded in order; command packets are acknowledged with a Command
// Complete event carrying the status configured for their opcode. Packets
// staged in pending are delivered once the radio is enabled, scanning or
// advertising, the way real traffic only arrives after an enable.
type fakeController struct {
	wrote   [][]byte
	rx      [][]byte
	pending [][]byte
	status  map[hci.Opcode]uint8
	closed  bool
}

const (
	opAdvEnable  = hci.Opcode(0x200A)
	opScanEnable = hci.Opcode(0x200C)
)

func (f *fakeController) Read(p []byte) (int, error) {
	if len(f.rx) == 0 {
		return 0, hci.ErrReadTimeout
	}
	pkt := f.rx[0]
	f.rx = f.rx[1:]
	return copy(p, pkt), nil
}

func (f *fakeController) Write(p []byte) (int, error) {
	f.wrote = append(f.wrote, append([]byte(nil), p...))
	if len(p) >= 4 && p[0] == hci.PktCommand {
		op := hci.Opcode(uint16(p[1]) | uint16(p[2])<<8)
		f.rx = append(f.rx, []byte{
			hci.PktEvent, byte(hci.EvtCommandComplete), 4,
			1, p[1], p[2], f.status[op],
		})
		if (op == opScanEnable || op == opAdvEnable) && len(p) >= 5 && p[4] == 1 {
			f.rx = append(f.rx, f.pending...)
			f.pending = nil
		}
	}
	return len(p), nil
}

func (f *fakeController) Close() error {
	f.closed = true
	return nil
}

func (f *fakeController) SetReadTimeout(time.Duration) error { return nil }

func (f *fakeController) hexWrites() []string {
	var out []string
	for _, w := range f.wrote {
		out = append(out, fmt.Sprintf("%x", w))
	}
	return out
}

func newTestDevice(f *fakeController) *Device {
	return &Device{t: f, cmd: hci.NewCmd(f), hello: defaultHelloMessage}
}

func TestNewDeviceDefaults(t *testing.T) {
	d := NewDevice()
	if d.devID != -1 {
		t.Errorf("devID: got %d want -1", d.devID)
	}
	if d.hello != defaultHelloMessage {
		t.Errorf("hello: got %q want %q", d.hello, defaultHelloMessage)
	}
}

func TestNewDeviceOptions(t *testing.T) {
	d := NewDevice(WithDeviceID(1), WithHelloMessage("hi"))
	if d.devID != 1 {
		t.Errorf("devID: got %d want 1", d.devID)
	}
	if d.hello != "hi" {
		t.Errorf("hello: got %q want %q", d.hello, "hi")
	}
}

func TestOperationsRequireInit(t *testing.T) {
	d := NewDevice()
	cases := []struct {
		name string
		call func() error
	}{
		{"Scan", func() error { return d.Scan(time.Millisecond) }},
		{"StopScan", func() error { return d.StopScan() }},
		{"ScanResults", func() error { _, err := d.ScanResults(); return err }},
		{"StartAdvertising", func() error { return d.StartAdvertising("x") }},
		{"StopAdvertising", func() error { return d.StopAdvertising() }},
		{"Serve", func() error { return d.Serve("x", time.Millisecond) }},
		{"Connect", func() error { _, err := d.Connect(Address{}, time.Millisecond); return err }},
		{"Disconnect", func() error { return d.Disconnect(0) }},
		{"Close", func() error { return d.Close() }},
	}
	for _, tt := range cases {
		if err := tt.call(); err != ErrNotInitialized {
			t.Errorf("%s before Init: got %v want ErrNotInitialized", tt.name, err)
		}
	}
}

func TestInitAlreadyInitialized(t *testing.T) {
	d := newTestDevice(new(fakeController))
	if err := d.Init(); err != ErrAlreadyInitialized {
		t.Errorf("Init on open device: got %v want ErrAlreadyInitialized", err)
	}
}

func TestClose(t *testing.T) {
	f := new(fakeController)
	d := newTestDevice(f)
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.closed {
		t.Error("Close did not close the transport")
	}
	if err := d.Close(); err != ErrNotInitialized {
		t.Errorf("second Close: got %v want ErrNotInitialized", err)
	}
}

func TestCloseDisablesScan(t *testing.T) {
	f := new(fakeController)
	d := newTestDevice(f)
	d.scanning = true
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	writes := f.hexWrites()
	if len(writes) != 1 || writes[0] != "010c20020000" {
		t.Errorf("Close writes: got %v want scan disable only", writes)
	}
}
