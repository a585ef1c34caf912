package hci

// HCI packet indicator, the first byte of every packet on the socket.
const (
	PktCommand uint8 = 0x01
	PktACLData uint8 = 0x02
	PktSCOData uint8 = 0x03
	PktEvent   uint8 = 0x04
	PktVendor  uint8 = 0xFF
)

// Advertising PDU types reported in an LE Advertising Report.
const (
	AdvInd        = 0x00 // Connectable undirected advertising (ADV_IND)
	AdvDirectInd  = 0x01 // Connectable directed advertising (ADV_DIRECT_IND)
	AdvScanInd    = 0x02 // Scannable undirected advertising (ADV_SCAN_IND)
	AdvNonconnInd = 0x03 // Non connectable undirected advertising (ADV_NONCONN_IND)
	ScanRsp       = 0x04 // Scan Response (SCAN_RSP)
)

// Address types used in advertising reports and own-address parameters.
const (
	AddrTypePublic = 0x00
	AddrTypeRandom = 0x01
)

// LE scan types.
const (
	ScanTypePassive = 0x00
	ScanTypeActive  = 0x01
)

// CIDAtt is the fixed L2CAP channel ID carrying ATT traffic.
const CIDAtt = 0x0004
