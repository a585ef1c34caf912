package blehal

// This file lays out the fixed attribute database served by Serve: one
// primary service holding a readable hello characteristic and a writable
// scratch buffer. The layout never changes.

// attribute handles
const (
	handleService    uint16 = 0x0001
	handleHelloDecl  uint16 = 0x0002
	handleHelloValue uint16 = 0x0003
	handleWriteDecl  uint16 = 0x0004
	handleWriteValue uint16 = 0x0005

	handleLast = handleWriteValue
)

// attribute type UUIDs
var (
	attrPrimaryServiceUUID = UUID16(0x2800)
	attrCharacteristicUUID = UUID16(0x2803)

	demoServiceUUID = UUID16(0x1234)
	helloCharUUID   = UUID16(0x1235)
	writeCharUUID   = UUID16(0x1236)
)

// characteristic property bits
const (
	charRead    = 1 << (iota + 1) // the characteristic may be read
	charWriteNR                   // the characteristic may be written to, with no reply
	charWrite                     // the characteristic may be written to, with a reply
	charNotify                    // the characteristic supports notifications
)

// attrType maps each populated handle to its attribute type, as reported
// in Find Information responses.
var attrType = map[uint16]UUID{
	handleService:    attrPrimaryServiceUUID,
	handleHelloDecl:  attrCharacteristicUUID,
	handleHelloValue: helloCharUUID,
	handleWriteDecl:  attrCharacteristicUUID,
	handleWriteValue: writeCharUUID,
}
