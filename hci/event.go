package hci

import (
	"fmt"
)

// EventCode identifies an HCI event.
type EventCode uint8

const (
	EvtDisconnectionComplete EventCode = 0x05
	EvtCommandComplete       EventCode = 0x0E
	EvtCommandStatus         EventCode = 0x0F
	EvtLEMeta                EventCode = 0x3E
)

var evtName = map[EventCode]string{
	EvtDisconnectionComplete: "Disconnection Complete",
	EvtCommandComplete:       "Command Complete",
	EvtCommandStatus:         "Command Status",
	EvtLEMeta:                "LE Meta",
}

func (c EventCode) String() string {
	if n, ok := evtName[c]; ok {
		return n
	}
	return fmt.Sprintf("event 0x%02X", uint8(c))
}

// LE Meta subevent codes.
const (
	SubevtLEConnectionComplete = 0x01
	SubevtLEAdvertisingReport  = 0x02
	SubevtLEConnectionUpdate   = 0x03
	SubevtLEReadRemoteFeatures = 0x04
	SubevtLELongTermKeyRequest = 0x05
)

// EventHeader is the two bytes following the event packet indicator.
type EventHeader struct {
	Code EventCode
	Plen uint8
}

func (h *EventHeader) Unmarshal(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("malformed event header")
	}
	h.Code = EventCode(b[0])
	h.Plen = b[1]
	if len(b) < 2+int(h.Plen) {
		return fmt.Errorf("event %v: wrong length %d", h.Code, len(b))
	}
	return nil
}

// CommandComplete is the parameter block of a Command Complete event. The
// first byte of the return parameters is the status of the completed
// command.
type CommandComplete struct {
	NumPackets uint8
	Opcode     uint16
	Status     uint8
	Return     []byte
}

func (ep *CommandComplete) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("malformed command complete: %d bytes", len(b))
	}
	ep.NumPackets = b[0]
	ep.Opcode = o.Uint16(b[1:])
	ep.Status = b[3]
	ep.Return = b[4:]
	return nil
}

// DisconnectionComplete is the parameter block of a Disconnection Complete
// event.
type DisconnectionComplete struct {
	Status           uint8
	ConnectionHandle uint16
	Reason           uint8
}

func (ep *DisconnectionComplete) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("malformed disconnection complete: %d bytes", len(b))
	}
	ep.Status = b[0]
	ep.ConnectionHandle = o.Uint16(b[1:])
	ep.Reason = b[3]
	return nil
}

// LEConnectionComplete is the head of an LE Connection Complete subevent.
// The trailing parameters (role, peer address, connection timing) are not
// consumed by this stack and are left unparsed.
type LEConnectionComplete struct {
	SubeventCode     uint8
	Status           uint8
	ConnectionHandle uint16
}

func (ep *LEConnectionComplete) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("malformed le connection complete: %d bytes", len(b))
	}
	ep.SubeventCode = b[0]
	ep.Status = b[1]
	ep.ConnectionHandle = o.Uint16(b[2:])
	return nil
}

// LEAdvertisingReport is the first report of an LE Advertising Report
// subevent. Controllers may batch several reports into one event; only the
// first is decoded, and NumReports records how many arrived.
type LEAdvertisingReport struct {
	SubeventCode uint8
	NumReports   uint8
	EventType    uint8
	AddressType  uint8
	Address      [6]byte // wire order, least significant byte first
	Data         []byte
	RSSI         int8
}

func (ep *LEAdvertisingReport) Unmarshal(b []byte) error {
	if len(b) < 11 {
		return fmt.Errorf("malformed advertising report: %d bytes", len(b))
	}
	ep.SubeventCode = b[0]
	ep.NumReports = b[1]
	if ep.NumReports == 0 {
		return fmt.Errorf("advertising report with no reports")
	}
	ep.EventType = b[2]
	ep.AddressType = b[3]
	copy(ep.Address[:], b[4:10])
	dlen := int(b[10])
	ep.Data = nil
	if dlen > 0 && len(b) >= 11+dlen {
		ep.Data = b[11 : 11+dlen]
	}
	// A truncated report keeps its address but reports no signal strength.
	ep.RSSI = -127
	if 11+dlen < len(b) {
		ep.RSSI = int8(b[11+dlen])
	}
	return nil
}
