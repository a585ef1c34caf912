package blehal

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bluelark/blehal/hci"
)

// maxScanResults caps how many distinct devices one scan retains. Devices
// sighted after the cap is reached are dropped.
const maxScanResults = 32

// scanReadTimeout bounds each poll read while scanning so the wall-clock
// budget is checked at least this often.
const scanReadTimeout = 100 * time.Millisecond

// ScanResult is one device sighted during a scan.
type ScanResult struct {
	Address     Address
	AddressType AddressType
	RSSI        int8
	Name        string // empty when the advertisement carried no name
}

// Scan listens for advertisements for the given duration, replacing the
// results of any previous scan. A device is recorded the first time its
// address is heard; later sightings are dropped, updated RSSI or name
// included. At most maxScanResults devices are kept. An elapsed budget is
// not an error, even when nothing was heard.
func (d *Device) Scan(duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}
	if d.scanning {
		return nil
	}
	d.results = nil

	err := d.cmd.Send(&hci.LESetScanParameters{
		LEScanType:     hci.ScanTypeActive,
		LEScanInterval: 0x0010, // 16 * 0.625ms = 10ms
		LEScanWindow:   0x0010,
		OwnAddressType: hci.AddrTypePublic,
	})
	if err != nil {
		return errors.Wrap(err, "scan: set parameters")
	}
	if err := d.cmd.Send(&hci.LESetScanEnable{LEScanEnable: 1}); err != nil {
		return errors.Wrap(err, "scan: enable")
	}
	d.scanning = true

	if err := d.t.SetReadTimeout(scanReadTimeout); err != nil {
		return errors.Wrap(err, "scan: set read timeout")
	}

	start := time.Now()
	buf := make([]byte, 258)
	var results []ScanResult
	for time.Since(start) < duration {
		n, err := d.t.Read(buf)
		if err != nil {
			// Timed-out reads are the poll ticking over; anything else
			// is logged and the scan keeps going.
			if errors.Cause(err) != hci.ErrReadTimeout {
				logrus.WithError(err).Debug("scan: read")
			}
			continue
		}
		if n < 4 {
			continue
		}
		if buf[0] != hci.PktEvent || hci.EventCode(buf[1]) != hci.EvtLEMeta || buf[3] != hci.SubevtLEAdvertisingReport {
			continue
		}
		var rep hci.LEAdvertisingReport
		if err := rep.Unmarshal(buf[3:n]); err != nil {
			logrus.WithError(err).Debug("scan: bad report")
			continue
		}
		r := resultFromReport(&rep)
		if haveAddress(results, r.Address) {
			continue
		}
		if len(results) < maxScanResults {
			logrus.Debugf("scan: found %v rssi %d name %q", r.Address, r.RSSI, r.Name)
			results = append(results, r)
		}
	}

	if err := d.cmd.Send(&hci.LESetScanEnable{}); err != nil {
		logrus.WithError(err).Debug("scan: disable")
	}
	d.results = results
	d.scanning = false
	return nil
}

// StopScan disables an in-progress scan. It is a no-op when no scan is
// running, which is the common case: Scan is synchronous and disables
// scanning itself before returning.
func (d *Device) StopScan() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}
	if !d.scanning {
		return nil
	}
	if err := d.cmd.Send(&hci.LESetScanEnable{}); err != nil {
		return errors.Wrap(err, "scan: disable")
	}
	d.scanning = false
	return nil
}

// ScanResults returns a copy of the devices gathered by the most recent
// scan.
func (d *Device) ScanResults() ([]ScanResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return nil, ErrNotInitialized
	}
	return append([]ScanResult(nil), d.results...), nil
}

// resultFromReport converts a wire advertising report into a ScanResult.
func resultFromReport(rep *hci.LEAdvertisingReport) ScanResult {
	return ScanResult{
		Address:     addressFromWire(rep.Address[:]),
		AddressType: addressTypeFromWire(rep.AddressType),
		RSSI:        rep.RSSI,
		Name:        localName(rep.Data),
	}
}

// haveAddress reports whether addr was already recorded this scan.
func haveAddress(rr []ScanResult, addr Address) bool {
	for i := range rr {
		if rr[i].Address == addr {
			return true
		}
	}
	return false
}
