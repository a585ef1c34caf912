package blehal

import (
	"bytes"
	"fmt"
)

// A UUID is an attribute type identifier. The bytes are held in
// little-endian order, the order they travel in ATT PDUs.
type UUID struct {
	b []byte
}

// UUID16 returns a 16-bit SIG-assigned UUID.
func UUID16(i uint16) UUID {
	return UUID{[]byte{byte(i), byte(i >> 8)}}
}

// Expand128 widens a 16-bit UUID onto the Bluetooth Base UUID. 128-bit
// UUIDs are returned unchanged.
func (u UUID) Expand128() UUID {
	if len(u.b) != 2 {
		return u
	}
	b := make([]byte, 16)
	copy(b, bluetoothBaseUUID)
	b[14] = u.b[0]
	b[15] = u.b[1]
	return UUID{b}
}

// Len returns the length of the UUID in bytes, 2 or 16.
func (u UUID) Len() int {
	return len(u.b)
}

// String hex-encodes the UUID in display order.
func (u UUID) String() string {
	return fmt.Sprintf("%x", reverse(u.b))
}

// Equal reports whether u and v hold the same UUID.
func (u UUID) Equal(v UUID) bool {
	return bytes.Equal(u.b, v.b)
}

// bluetoothBaseUUID is the low 14 bytes of the Base UUID, wire order.
var bluetoothBaseUUID = []byte{
	0xFB, 0x34, 0x9B, 0x5F, 0x80, 0x00, 0x00, 0x80,
	0x00, 0x10, 0x00, 0x00, 0x00, 0x00,
}

// reverse returns a new buffer holding u backwards, converting between
// wire order and display order.
func reverse(u []byte) []byte {
	r := make([]byte, len(u))
	for i := range u {
		r[len(u)-1-i] = u[i]
	}
	return r
}
