package blehal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bluelark/blehal/hci"
)

// Address is a 6-byte Bluetooth device address in display order, most
// significant byte first.
type Address [6]byte

// ParseAddress parses a colon-separated hex address such as
// "AA:BB:CC:DD:EE:FF". It returns ErrInvalidParameter unless s is exactly
// six colon-separated hex octets.
func ParseAddress(s string) (Address, error) {
	var a Address
	parts := strings.Split(s, ":")
	if len(parts) != len(a) {
		return a, errors.Wrapf(ErrInvalidParameter, "address %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return a, errors.Wrapf(ErrInvalidParameter, "address %q", s)
		}
		a[i] = byte(v)
	}
	return a, nil
}

// addressFromWire converts from the little-endian byte order used in HCI
// events to display order.
func addressFromWire(b []byte) Address {
	var a Address
	for i := range a {
		a[i] = b[len(a)-1-i]
	}
	return a
}

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// AddressType reports whether a device advertised with its fixed public
// address or a random one.
type AddressType uint8

const (
	AddressTypePublic AddressType = iota
	AddressTypeRandom
)

// addressTypeFromWire maps the address type field of an advertising
// report: 0x01 is random, everything else is treated as public.
func addressTypeFromWire(b uint8) AddressType {
	if b == hci.AddrTypeRandom {
		return AddressTypeRandom
	}
	return AddressTypePublic
}

func (t AddressType) String() string {
	switch t {
	case AddressTypePublic:
		return "Public"
	case AddressTypeRandom:
		return "Random"
	}
	return "Unknown"
}
