package blehal

import "time"

// ConnectionHandle identifies an open link to a remote device.
type ConnectionHandle uint16

// CharacteristicHandle addresses one characteristic on a connected remote
// device: the attribute handle of its declaration and the handle its
// value lives at.
type CharacteristicHandle struct {
	Connection  ConnectionHandle
	Handle      uint16
	ValueHandle uint16
}

// Connect is not implemented: this driver fills only the peripheral role.
// It fails with ErrNotSupported once the Device is validated to be open.
//
// TODO: implement the central connection procedure (LE Create Connection
// and the L2CAP bring-up that follows it).
func (d *Device) Connect(addr Address, timeout time.Duration) (ConnectionHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return 0, ErrNotInitialized
	}
	return 0, ErrNotSupported
}

// Disconnect releases a connection obtained from Connect. Connect never
// succeeds, so there is never anything to release and Disconnect succeeds
// trivially on an open Device.
func (d *Device) Disconnect(handle ConnectionHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}
	return nil
}

// DiscoverServices is not implemented; see Connect.
func (d *Device) DiscoverServices(handle ConnectionHandle) ([]UUID, error) {
	return nil, ErrNotSupported
}

// ReadCharacteristic is not implemented; see Connect.
func (d *Device) ReadCharacteristic(c CharacteristicHandle) ([]byte, error) {
	return nil, ErrNotSupported
}

// WriteCharacteristic is not implemented; see Connect.
func (d *Device) WriteCharacteristic(c CharacteristicHandle, value []byte) error {
	return ErrNotSupported
}
