package blehal

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bluelark/blehal/hci"
)

// staticRandomAddress is the fixed static random address installed
// whenever the Device advertises. The two most significant bits of a
// static random address must be 11.
var staticRandomAddress = [6]byte{0xC0, 0xDE, 0xCA, 0xFE, 0xBE, 0xEF}

// Advertising runs at a fixed 100ms interval on all three advertising
// channels.
const (
	advIntervalMin = 0x00A0 // 160 * 0.625ms = 100ms
	advIntervalMax = 0x00A0
	advChannelAll  = 0x07 // channels 37, 38 and 39
)

// StartAdvertising begins connectable undirected advertising under the
// given name, truncated to maxAdvNameLength bytes. It is a no-op when the
// Device is already advertising.
func (d *Device) StartAdvertising(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}
	if d.advertising {
		return nil
	}
	if err := d.advertise(name); err != nil {
		return err
	}
	d.advertising = true
	logrus.Debugf("adv: advertising as %q", name)
	return nil
}

// advertise runs the advertising bring-up sequence: random address,
// parameters, data, enable. Each step waits for its completion and the
// first failure aborts. Callers hold d.mu.
func (d *Device) advertise(name string) error {
	if err := d.cmd.Send(&hci.LESetRandomAddress{Address: staticRandomAddress}); err != nil {
		return errors.Wrap(err, "adv: set random address")
	}
	if err := d.cmd.Send(&hci.LESetAdvertisingParameters{
		AdvertisingIntervalMin: advIntervalMin,
		AdvertisingIntervalMax: advIntervalMax,
		AdvertisingType:        hci.AdvInd,
		OwnAddressType:         hci.AddrTypeRandom,
		AdvertisingChannelMap:  advChannelAll,
	}); err != nil {
		return errors.Wrap(err, "adv: set parameters")
	}

	pkt := new(advPacket)
	pkt.appendField(adFlags, []byte{flagGeneralDiscoverable | flagLEOnly})
	pkt.appendName(name)
	data := hci.LESetAdvertisingData{AdvertisingDataLength: uint8(len(pkt.data))}
	copy(data.AdvertisingData[:], pkt.data)
	if err := d.cmd.Send(&data); err != nil {
		return errors.Wrap(err, "adv: set data")
	}

	if err := d.cmd.Send(&hci.LESetAdvertiseEnable{AdvertisingEnable: 1}); err != nil {
		return errors.Wrap(err, "adv: enable")
	}
	return nil
}

// StopAdvertising disables advertising. It is a no-op when the Device is
// not advertising. The disable command is best effort: the Device is
// marked not advertising even if the controller rejects it.
func (d *Device) StopAdvertising() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}
	if !d.advertising {
		return nil
	}
	if err := d.cmd.Send(&hci.LESetAdvertiseEnable{}); err != nil {
		logrus.WithError(err).Debug("adv: disable")
	}
	d.advertising = false
	logrus.Debug("adv: stopped")
	return nil
}
