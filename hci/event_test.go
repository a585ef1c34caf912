package hci

import (
	"bytes"
	"testing"
)

func TestEventHeaderUnmarshal(t *testing.T) {
	var h EventHeader
	if err := h.Unmarshal([]byte{0x0E, 0x04, 1, 0x0C, 0x20, 0x00}); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if h.Code != EvtCommandComplete || h.Plen != 4 {
		t.Errorf("header: got %+v", h)
	}

	if err := h.Unmarshal([]byte{0x0E}); err == nil {
		t.Error("Unmarshal accepted a one-byte header")
	}
	// Plen promises more bytes than the packet carries.
	if err := h.Unmarshal([]byte{0x0E, 0x04, 1}); err == nil {
		t.Error("Unmarshal accepted a short parameter block")
	}
}

func TestCommandCompleteUnmarshal(t *testing.T) {
	var cc CommandComplete
	if err := cc.Unmarshal([]byte{1, 0x0C, 0x20, 0x00, 0xAA, 0xBB}); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cc.NumPackets != 1 || cc.Opcode != 0x200C || cc.Status != 0 {
		t.Errorf("command complete: got %+v", cc)
	}
	if !bytes.Equal(cc.Return, []byte{0xAA, 0xBB}) {
		t.Errorf("return parameters: got %x want aabb", cc.Return)
	}

	if err := cc.Unmarshal([]byte{1, 0x0C}); err == nil {
		t.Error("Unmarshal accepted a truncated completion")
	}
}

func TestDisconnectionCompleteUnmarshal(t *testing.T) {
	var dc DisconnectionComplete
	if err := dc.Unmarshal([]byte{0x00, 0x40, 0x00, 0x13}); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if dc.Status != 0 || dc.ConnectionHandle != 0x0040 || dc.Reason != 0x13 {
		t.Errorf("disconnection complete: got %+v", dc)
	}

	if err := dc.Unmarshal([]byte{0x00, 0x40}); err == nil {
		t.Error("Unmarshal accepted a truncated event")
	}
}

func TestLEConnectionCompleteUnmarshal(t *testing.T) {
	var cc LEConnectionComplete
	if err := cc.Unmarshal([]byte{SubevtLEConnectionComplete, 0x00, 0x40, 0x00}); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cc.Status != 0 || cc.ConnectionHandle != 0x0040 {
		t.Errorf("connection complete: got %+v", cc)
	}

	if err := cc.Unmarshal([]byte{SubevtLEConnectionComplete, 0x00}); err == nil {
		t.Error("Unmarshal accepted a truncated subevent")
	}
}

func TestLEAdvertisingReportUnmarshal(t *testing.T) {
	// One ADV_IND report from a random address (wire order, least
	// significant byte first), three bytes of data, -60 dBm.
	params := []byte{
		SubevtLEAdvertisingReport, 0x01,
		AdvInd, AddrTypeRandom,
		0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0x03, 0x02, 0x01, 0x06,
		0xC4,
	}
	var rep LEAdvertisingReport
	if err := rep.Unmarshal(params); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rep.NumReports != 1 || rep.EventType != AdvInd || rep.AddressType != AddrTypeRandom {
		t.Errorf("report: got %+v", rep)
	}
	if want := [6]byte{0x66, 0x55, 0x44, 0x33, 0x22, 0x11}; rep.Address != want {
		t.Errorf("address: got %x want %x", rep.Address, want)
	}
	if !bytes.Equal(rep.Data, []byte{0x02, 0x01, 0x06}) {
		t.Errorf("data: got %x want 020106", rep.Data)
	}
	if rep.RSSI != -60 {
		t.Errorf("rssi: got %d want -60", rep.RSSI)
	}
}

func TestLEAdvertisingReportBatch(t *testing.T) {
	// Two batched reports: only the first is decoded, NumReports records
	// the batch size.
	params := []byte{
		SubevtLEAdvertisingReport, 0x02,
		AdvInd, AddrTypePublic,
		0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0x00, // no data
		0xC4,
		AdvInd, AddrTypePublic,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06,
		0x00,
		0xC4,
	}
	var rep LEAdvertisingReport
	if err := rep.Unmarshal(params); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rep.NumReports != 2 {
		t.Errorf("num reports: got %d want 2", rep.NumReports)
	}
	if want := [6]byte{0x66, 0x55, 0x44, 0x33, 0x22, 0x11}; rep.Address != want {
		t.Errorf("address: got %x want %x", rep.Address, want)
	}
}

func TestLEAdvertisingReportTruncated(t *testing.T) {
	// The data length field promises more than the packet carries: the
	// address survives, data and signal strength do not.
	params := []byte{
		SubevtLEAdvertisingReport, 0x01,
		AdvInd, AddrTypePublic,
		0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0x05, 0xAA, 0xBB,
	}
	var rep LEAdvertisingReport
	if err := rep.Unmarshal(params); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rep.Data != nil {
		t.Errorf("data: got %x want none", rep.Data)
	}
	if rep.RSSI != -127 {
		t.Errorf("rssi: got %d want -127", rep.RSSI)
	}

	if err := rep.Unmarshal(params[:10]); err == nil {
		t.Error("Unmarshal accepted a report shorter than its fixed head")
	}

	empty := []byte{
		SubevtLEAdvertisingReport, 0x00,
		AdvInd, AddrTypePublic,
		0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0x00, 0xC4,
	}
	if err := rep.Unmarshal(empty); err == nil {
		t.Error("Unmarshal accepted an event with zero reports")
	}
}
