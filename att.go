package blehal

import "github.com/sirupsen/logrus"

const (
	attOpError           = 0x01
	attOpMtuReq          = 0x02
	attOpMtuResp         = 0x03
	attOpFindInfoReq     = 0x04
	attOpFindInfoResp    = 0x05
	attOpFindByTypeReq   = 0x06
	attOpFindByTypeResp  = 0x07
	attOpReadByTypeReq   = 0x08
	attOpReadByTypeResp  = 0x09
	attOpReadReq         = 0x0a
	attOpReadResp        = 0x0b
	attOpReadBlobReq     = 0x0c
	attOpReadBlobResp    = 0x0d
	attOpReadMultiReq    = 0x0e
	attOpReadMultiResp   = 0x0f
	attOpReadByGroupReq  = 0x10
	attOpReadByGroupResp = 0x11
	attOpWriteReq        = 0x12
	attOpWriteResp       = 0x13
	attOpWriteCmd        = 0x52
	attOpPrepWriteReq    = 0x16
	attOpPrepWriteResp   = 0x17
	attOpExecWriteReq    = 0x18
	attOpExecWriteResp   = 0x19
	attOpHandleNotify    = 0x1b
	attOpHandleInd       = 0x1d
	attOpHandleCnf       = 0x1e
	attOpSignedWriteCmd  = 0xd2
)

const (
	attEcodeSuccess           = 0x00
	attEcodeInvalidHandle     = 0x01
	attEcodeReadNotPerm       = 0x02
	attEcodeWriteNotPerm      = 0x03
	attEcodeInvalidPDU        = 0x04
	attEcodeAuthentication    = 0x05
	attEcodeReqNotSupp        = 0x06
	attEcodeInvalidOffset     = 0x07
	attEcodeAuthorization     = 0x08
	attEcodePrepQueueFull     = 0x09
	attEcodeAttrNotFound      = 0x0a
	attEcodeAttrNotLong       = 0x0b
	attEcodeInsuffEncrKeySize = 0x0c
	attEcodeInvalAttrValueLen = 0x0d
	attEcodeUnlikely          = 0x0e
	attEcodeInsuffEnc         = 0x0f
	attEcodeUnsuppGrpType     = 0x10
	attEcodeInsuffResources   = 0x11
)

// serverMTU is the MTU granted to every client.
const serverMTU = 23

// maxWriteLen is the capacity of the writable characteristic.
const maxWriteLen = 32

type attErr struct {
	opcode uint8
	handle uint16
	status uint8
}

func (e attErr) Marshal() []byte {
	// little-endian encoding for handle
	return []byte{attOpError, e.opcode, byte(e.handle), byte(e.handle >> 8), e.status}
}

func attErrorResp(op byte, h uint16, s uint8) []byte {
	return attErr{opcode: op, handle: h, status: s}.Marshal()
}

// attServer answers ATT requests against the fixed attribute database.
// Requests and responses are bare ATT PDUs; the caller strips and adds
// the transport framing.
type attServer struct {
	hello []byte            // read characteristic value
	wbuf  [maxWriteLen]byte // write characteristic backing store
	wlen  int
}

func newATTServer(hello string) *attServer {
	return &attServer{hello: []byte(hello)}
}

// written returns the current contents of the writable characteristic.
func (s *attServer) written() []byte {
	return s.wbuf[:s.wlen]
}

// handle answers a single request. A nil result means no response is
// sent, either because the request was truncated or because the opcode
// carries no response.
func (s *attServer) handle(req []byte) []byte {
	if len(req) == 0 {
		return nil
	}
	op := req[0]
	switch op {
	case attOpMtuReq:
		logrus.Debugf("att: mtu request")
		return []byte{attOpMtuResp, byte(serverMTU), byte(serverMTU >> 8)}
	case attOpReadByGroupReq:
		return s.readByGroup(req[1:])
	case attOpReadByTypeReq:
		return s.readByType(req[1:])
	case attOpFindInfoReq:
		return s.findInfo(req[1:])
	case attOpReadReq:
		return s.read(req[1:])
	case attOpWriteReq, attOpWriteCmd:
		return s.write(op, req[1:])
	}
	logrus.Debugf("att: unhandled opcode 0x%02X", op)
	return nil
}

// readByGroup performs service discovery. The database holds a single
// service, so any start handle inside it gets the one entry and anything
// past it gets attribute-not-found.
func (s *attServer) readByGroup(p []byte) []byte {
	if len(p) >= 2 {
		start := uint16(p[0]) | uint16(p[1])<<8
		logrus.Debugf("att: service discovery from handle %d", start)
		if start > handleLast {
			return attErrorResp(attOpReadByGroupReq, start, attEcodeAttrNotFound)
		}
	}
	rsp := []byte{attOpReadByGroupResp,
		0x06, // entry length: start(2) + end(2) + uuid(2)
		byte(handleService), byte(handleService >> 8),
		byte(handleLast), byte(handleLast >> 8),
	}
	return append(rsp, demoServiceUUID.b...)
}

// readByType performs characteristic discovery. Only the characteristic
// declaration type is populated; the two declarations are returned one
// per request, lowest first.
func (s *attServer) readByType(p []byte) []byte {
	if len(p) >= 6 {
		start := uint16(p[0]) | uint16(p[1])<<8
		typ := UUID{p[4:6]}
		logrus.Debugf("att: read by type from handle %d, type %v", start, typ)
		if typ.Equal(attrCharacteristicUUID) {
			switch {
			case start <= handleHelloDecl:
				return charDecl(handleHelloDecl, charRead, handleHelloValue, helloCharUUID)
			case start <= handleWriteDecl:
				return charDecl(handleWriteDecl, charRead|charWrite, handleWriteValue, writeCharUUID)
			}
			return attErrorResp(attOpReadByTypeReq, start, attEcodeAttrNotFound)
		}
	}
	start := uint16(0x0001)
	if len(p) >= 2 {
		start = uint16(p[0]) | uint16(p[1])<<8
	}
	return attErrorResp(attOpReadByTypeReq, start, attEcodeAttrNotFound)
}

// charDecl builds one characteristic declaration entry.
func charDecl(h uint16, props byte, vh uint16, u UUID) []byte {
	rsp := []byte{attOpReadByTypeResp,
		0x07, // entry length: handle(2) + props(1) + value handle(2) + uuid(2)
		byte(h), byte(h >> 8),
		props,
		byte(vh), byte(vh >> 8),
	}
	return append(rsp, u.b...)
}

// findInfo reports the type of exactly the requested start handle.
func (s *attServer) findInfo(p []byte) []byte {
	if len(p) < 4 {
		return attErrorResp(attOpFindInfoReq, 0x0001, attEcodeAttrNotFound)
	}
	start := uint16(p[0]) | uint16(p[1])<<8
	logrus.Debugf("att: find info from handle %d", start)
	u, ok := attrType[start]
	if !ok {
		return attErrorResp(attOpFindInfoReq, start, attEcodeAttrNotFound)
	}
	rsp := []byte{attOpFindInfoResp,
		0x01, // format: 16-bit UUIDs
		byte(start), byte(start >> 8),
	}
	return append(rsp, u.b...)
}

// read returns the value of the requested handle. Handles outside the
// two characteristic values read as "Unknown". Truncated requests are
// dropped without a response.
func (s *attServer) read(p []byte) []byte {
	if len(p) < 2 {
		return nil
	}
	h := uint16(p[0]) | uint16(p[1])<<8
	logrus.Debugf("att: read request for handle %d", h)
	var data []byte
	switch h {
	case handleHelloValue:
		data = s.hello
	case handleWriteValue:
		data = s.written()
	default:
		data = []byte("Unknown")
	}
	return append([]byte{attOpReadResp}, data...)
}

// write stores the value carried by a write request or command. Only the
// writable characteristic accepts data, and only up to maxWriteLen bytes;
// everything else is silently ignored. Write requests are acknowledged
// whether or not the value was stored, write commands never are.
func (s *attServer) write(op byte, p []byte) []byte {
	if len(p) < 2 {
		return nil
	}
	h := uint16(p[0]) | uint16(p[1])<<8
	value := p[2:]
	logrus.Debugf("att: write to handle %d, %d bytes", h, len(value))
	if h == handleWriteValue && len(value) <= maxWriteLen {
		copy(s.wbuf[:], value)
		s.wlen = len(value)
	}
	if op != attOpWriteReq {
		return nil
	}
	return []byte{attOpWriteResp}
}
