package hci

import (
	"fmt"
)

// ACLData is one inbound ACL data packet, without the leading packet
// indicator. Payload is everything after the L2CAP channel ID; its extent
// follows the packet, not the L2CAP length field, which mirrors what the
// controller actually delivered.
type ACLData struct {
	Handle  uint16
	Flags   uint8
	ACLLen  uint16
	L2Len   uint16
	CID     uint16
	Payload []byte
}

func (a *ACLData) Unmarshal(b []byte) error {
	if len(b) < 8 {
		return fmt.Errorf("malformed acl packet: %d bytes", len(b))
	}
	a.Handle = uint16(b[0]) | uint16(b[1]&0x0F)<<8
	a.Flags = b[1] >> 4
	a.ACLLen = o.Uint16(b[2:])
	a.L2Len = o.Uint16(b[4:])
	a.CID = o.Uint16(b[6:])
	a.Payload = b[8:]
	return nil
}

func (a *ACLData) String() string {
	return fmt.Sprintf("ACL data: handle 0x%04X flags 0x%X cid 0x%04X len %d",
		a.Handle, a.Flags, a.CID, len(a.Payload))
}

// MarshalACL frames payload as a complete ACL data packet for connection
// handle h on L2CAP channel cid, packet indicator included.
func MarshalACL(h uint16, cid uint16, payload []byte) []byte {
	b := make([]byte, 9+len(payload))
	b[0] = PktACLData
	b[1] = uint8(h)
	b[2] = uint8(h>>8) & 0x0F
	o.PutUint16(b[3:], uint16(4+len(payload)))
	o.PutUint16(b[5:], uint16(len(payload)))
	o.PutUint16(b[7:], cid)
	copy(b[9:], payload)
	return b
}
