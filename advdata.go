package blehal

// advertising data field types
const (
	adFlags        = 0x01 // Flags
	adShortName    = 0x08 // Shortened Local Name
	adCompleteName = 0x09 // Complete Local Name
)

// flag bits
const (
	flagLimitedDiscoverable = 1 << iota // LE Limited Discoverable Mode
	flagGeneralDiscoverable             // LE General Discoverable Mode
	flagLEOnly                          // BR/EDR Not Supported
	flagBothController                  // Simultaneous LE and BR/EDR to Same Device Capable (Controller)
	flagBothHost                        // Simultaneous LE and BR/EDR to Same Device Capable (Host)
)

// maxEIRPacketLength is the maximum advertising data payload length.
const maxEIRPacketLength = 31

// maxAdvNameLength bounds the local name field so the packet still fits
// alongside the flags field.
const maxAdvNameLength = 25

// maxLocalNameLength bounds names extracted from received advertising data.
const maxLocalNameLength = 32

// advPacket accumulates length-type-value advertising data fields.
type advPacket struct {
	data []byte
}

// appendField appends one field. A field consists of len, typ, data;
// len counts typ plus the data bytes.
func (p *advPacket) appendField(typ byte, data []byte) {
	p.data = append(p.data, byte(len(data)+1))
	p.data = append(p.data, typ)
	p.data = append(p.data, data...)
}

// appendName appends name as a Complete Local Name field, truncated to
// maxAdvNameLength. The field keeps the complete-name type even when the
// name is truncated.
func (p *advPacket) appendName(name string) {
	if len(name) > maxAdvNameLength {
		name = name[:maxAdvNameLength]
	}
	p.appendField(adCompleteName, []byte(name))
}

// localName extracts the device name from received advertising data. The
// first shortened or complete name field wins. A zero-length field or a
// field running past the payload ends the walk. Names are capped at
// maxLocalNameLength bytes.
func localName(b []byte) string {
	for i := 0; i < len(b); {
		fl := int(b[i])
		if fl == 0 || i+fl >= len(b) {
			break
		}
		typ := b[i+1]
		if (typ == adShortName || typ == adCompleteName) && fl > 1 {
			v := b[i+2 : i+1+fl]
			if len(v) > maxLocalNameLength {
				v = v[:maxLocalNameLength]
			}
			return string(v)
		}
		i += fl + 1
	}
	return ""
}
