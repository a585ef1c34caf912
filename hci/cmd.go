package hci

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var o = binary.LittleEndian

// Opcode identifies an HCI command: OGF in the upper 6 bits, OCF in the
// lower 10.
type Opcode uint16

func (op Opcode) OGF() uint8  { return uint8((uint16(op) & 0xFC00) >> 10) }
func (op Opcode) OCF() uint16 { return uint16(op) & 0x03FF }

func (op Opcode) String() string {
	if n, ok := opName[op]; ok {
		return n
	}
	return fmt.Sprintf("opcode 0x%04X", uint16(op))
}

// Opcode group fields.
const (
	linkCtl    = 0x01
	linkPolicy = 0x02
	hostCtl    = 0x03
	infoParam  = 0x04
	leCtl      = 0x08
)

const (
	opSetEventMask               Opcode = hostCtl<<10 | 0x0001
	opReset                      Opcode = hostCtl<<10 | 0x0003
	opLESetEventMask             Opcode = leCtl<<10 | 0x0001
	opLESetRandomAddress         Opcode = leCtl<<10 | 0x0005
	opLESetAdvertisingParameters Opcode = leCtl<<10 | 0x0006
	opLESetAdvertisingData       Opcode = leCtl<<10 | 0x0008
	opLESetScanResponseData      Opcode = leCtl<<10 | 0x0009
	opLESetAdvertiseEnable       Opcode = leCtl<<10 | 0x000A
	opLESetScanParameters        Opcode = leCtl<<10 | 0x000B
	opLESetScanEnable            Opcode = leCtl<<10 | 0x000C
)

var opName = map[Opcode]string{
	opSetEventMask:               "Set Event Mask",
	opReset:                      "Reset",
	opLESetEventMask:             "LE Set Event Mask",
	opLESetRandomAddress:         "LE Set Random Address",
	opLESetAdvertisingParameters: "LE Set Advertising Parameters",
	opLESetAdvertisingData:       "LE Set Advertising Data",
	opLESetScanResponseData:      "LE Set Scan Response Data",
	opLESetAdvertiseEnable:       "LE Set Advertise Enable",
	opLESetScanParameters:        "LE Set Scan Parameters",
	opLESetScanEnable:            "LE Set Scan Enable",
}

// Command is one controller command: its opcode, its parameter length, and
// a marshaler that writes the parameters into a prepared buffer.
type Command interface {
	Opcode() Opcode
	Len() int
	Marshal(b []byte)
}

// Reset (0x0C03)
type Reset struct{}

func (c Reset) Opcode() Opcode   { return opReset }
func (c Reset) Len() int         { return 0 }
func (c Reset) Marshal(b []byte) {}

// Set Event Mask (0x0C01)
type SetEventMask struct{ EventMask uint64 }

func (c SetEventMask) Opcode() Opcode   { return opSetEventMask }
func (c SetEventMask) Len() int         { return 8 }
func (c SetEventMask) Marshal(b []byte) { o.PutUint64(b, c.EventMask) }

// LE Set Event Mask (0x2001)
type LESetEventMask struct{ LEEventMask uint64 }

func (c LESetEventMask) Opcode() Opcode   { return opLESetEventMask }
func (c LESetEventMask) Len() int         { return 8 }
func (c LESetEventMask) Marshal(b []byte) { o.PutUint64(b, c.LEEventMask) }

// LE Set Random Address (0x2005). The address bytes are copied to the wire
// in the order given.
type LESetRandomAddress struct{ Address [6]byte }

func (c LESetRandomAddress) Opcode() Opcode   { return opLESetRandomAddress }
func (c LESetRandomAddress) Len() int         { return 6 }
func (c LESetRandomAddress) Marshal(b []byte) { copy(b, c.Address[:]) }

// LE Set Advertising Parameters (0x2006)
type LESetAdvertisingParameters struct {
	AdvertisingIntervalMin  uint16
	AdvertisingIntervalMax  uint16
	AdvertisingType         uint8
	OwnAddressType          uint8
	DirectAddressType       uint8
	DirectAddress           [6]byte
	AdvertisingChannelMap   uint8
	AdvertisingFilterPolicy uint8
}

func (c LESetAdvertisingParameters) Opcode() Opcode { return opLESetAdvertisingParameters }
func (c LESetAdvertisingParameters) Len() int       { return 15 }
func (c LESetAdvertisingParameters) Marshal(b []byte) {
	o.PutUint16(b[0:], c.AdvertisingIntervalMin)
	o.PutUint16(b[2:], c.AdvertisingIntervalMax)
	b[4] = c.AdvertisingType
	b[5] = c.OwnAddressType
	b[6] = c.DirectAddressType
	copy(b[7:], c.DirectAddress[:])
	b[13] = c.AdvertisingChannelMap
	b[14] = c.AdvertisingFilterPolicy
}

// LE Set Advertising Data (0x2008). The parameter block is always 32 bytes:
// the significant length followed by the zero-padded data.
type LESetAdvertisingData struct {
	AdvertisingDataLength uint8
	AdvertisingData       [31]byte
}

func (c LESetAdvertisingData) Opcode() Opcode { return opLESetAdvertisingData }
func (c LESetAdvertisingData) Len() int       { return 32 }
func (c LESetAdvertisingData) Marshal(b []byte) {
	b[0] = c.AdvertisingDataLength
	copy(b[1:], c.AdvertisingData[:])
}

// LE Set Advertise Enable (0x200A)
type LESetAdvertiseEnable struct{ AdvertisingEnable uint8 }

func (c LESetAdvertiseEnable) Opcode() Opcode   { return opLESetAdvertiseEnable }
func (c LESetAdvertiseEnable) Len() int         { return 1 }
func (c LESetAdvertiseEnable) Marshal(b []byte) { b[0] = c.AdvertisingEnable }

// LE Set Scan Parameters (0x200B)
type LESetScanParameters struct {
	LEScanType           uint8
	LEScanInterval       uint16
	LEScanWindow         uint16
	OwnAddressType       uint8
	ScanningFilterPolicy uint8
}

func (c LESetScanParameters) Opcode() Opcode { return opLESetScanParameters }
func (c LESetScanParameters) Len() int       { return 7 }
func (c LESetScanParameters) Marshal(b []byte) {
	b[0] = c.LEScanType
	o.PutUint16(b[1:], c.LEScanInterval)
	o.PutUint16(b[3:], c.LEScanWindow)
	b[5] = c.OwnAddressType
	b[6] = c.ScanningFilterPolicy
}

// LE Set Scan Enable (0x200C)
type LESetScanEnable struct {
	LEScanEnable     uint8
	FilterDuplicates uint8
}

func (c LESetScanEnable) Opcode() Opcode { return opLESetScanEnable }
func (c LESetScanEnable) Len() int       { return 2 }
func (c LESetScanEnable) Marshal(b []byte) {
	b[0] = c.LEScanEnable
	b[1] = c.FilterDuplicates
}

// CommandError is a completion whose status byte is nonzero.
type CommandError struct {
	Op     Opcode
	Status uint8
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%v failed: status 0x%02X", e.Op, e.Status)
}

// Completion wait: up to eventAttempts reads, each bounded by eventWait.
const (
	eventAttempts = 10
	eventWait     = time.Second
)

// Cmd frames controller commands and correlates their Command Complete
// events by opcode. One command is in flight at a time; completions for
// other opcodes observed while waiting are skipped, not errors.
type Cmd struct {
	t Transport
}

func NewCmd(t Transport) *Cmd { return &Cmd{t: t} }

// Send writes cmd and blocks until the controller reports its completion.
// A matching completion with nonzero status fails with *CommandError;
// exhausting the attempt budget fails with ErrTimeout.
func (c *Cmd) Send(cmd Command) error {
	b := make([]byte, 4+cmd.Len())
	b[0] = PktCommand
	o.PutUint16(b[1:], uint16(cmd.Opcode()))
	b[3] = uint8(cmd.Len())
	cmd.Marshal(b[4:])
	logrus.Debugf("hci: -> %v", cmd.Opcode())
	if _, err := c.t.Write(b); err != nil {
		return errors.Wrapf(err, "send %v", cmd.Opcode())
	}
	return c.wait(cmd.Opcode())
}

func (c *Cmd) wait(op Opcode) error {
	if err := c.t.SetReadTimeout(eventWait); err != nil {
		return errors.Wrap(err, "set read timeout")
	}
	buf := make([]byte, 258)
	for i := 0; i < eventAttempts; i++ {
		n, err := c.t.Read(buf)
		if errors.Cause(err) == ErrReadTimeout {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "wait for %v", op)
		}
		if n < 3 || buf[0] != PktEvent || EventCode(buf[1]) != EvtCommandComplete {
			continue
		}
		var cc CommandComplete
		if cc.Unmarshal(buf[3:n]) != nil {
			continue
		}
		if Opcode(cc.Opcode) != op {
			logrus.Debugf("hci: completion for %v while waiting for %v", Opcode(cc.Opcode), op)
			continue
		}
		if cc.Status != 0 {
			return &CommandError{Op: op, Status: cc.Status}
		}
		return nil
	}
	return errors.Wrapf(ErrTimeout, "no completion for %v", op)
}

// InitUserChannel brings the controller up after a user-channel bind: the
// kernel stack is bypassed there, so the reset and the event masks that the
// kernel would normally install are sent here. The classic mask enables the
// standard events including LE Meta; the LE mask enables the LE subevents
// up to Long Term Key Request.
func (c *Cmd) InitUserChannel() error {
	if err := c.Send(Reset{}); err != nil {
		return err
	}
	if err := c.Send(SetEventMask{EventMask: 0x3FFFFFFFFFFFFFFF}); err != nil {
		return err
	}
	return c.Send(LESetEventMask{LEEventMask: 0x000000000000001F})
}
