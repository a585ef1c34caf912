package blehal

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bluelark/blehal/hci"
)

// Serve advertises under the given name, waits for a central to connect,
// and answers ATT requests against the fixed attribute database until the
// peer disconnects or the wall-clock budget elapses. There is no
// reconnection handling: the first disconnection ends the serve. The
// advertising brought up on entry is disabled again on the way out.
func (d *Device) Serve(name string, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}

	if err := d.advertise(name); err != nil {
		return err
	}
	d.advertising = true
	logrus.Infof("gatt: advertising as %q, waiting for connection", name)

	srv := newATTServer(d.hello)

	if err := d.t.SetReadTimeout(timeout); err != nil {
		return errors.Wrap(err, "gatt: set read timeout")
	}
	start := time.Now()

	var (
		conn      uint16
		connected bool
	)
	buf := make([]byte, 512)

loop:
	for {
		if time.Since(start) >= timeout {
			logrus.Info("gatt: timeout waiting for connection or data")
			break
		}

		n, err := d.t.Read(buf)
		if err != nil {
			// Would-block reads and transient errors both leave the
			// loop running; the budget check above ends it.
			continue
		}
		if n < 3 {
			continue
		}

		switch buf[0] {
		case hci.PktEvent:
			switch {
			case hci.EventCode(buf[1]) == hci.EvtLEMeta && n >= 4:
				if buf[3] != hci.SubevtLEConnectionComplete || n < 7 {
					continue
				}
				var cc hci.LEConnectionComplete
				if cc.Unmarshal(buf[3:n]) != nil {
					continue
				}
				if cc.Status == 0 {
					conn = cc.ConnectionHandle
					connected = true
					logrus.Infof("gatt: connected, handle 0x%04X", conn)
				}
			case hci.EventCode(buf[1]) == hci.EvtDisconnectionComplete && n >= 5:
				logrus.Info("gatt: disconnected")
				connected = false
				break loop
			}

		case hci.PktACLData:
			if !connected || n < 9 {
				continue
			}
			var acl hci.ACLData
			if acl.Unmarshal(buf[1:n]) != nil {
				continue
			}
			if acl.CID != hci.CIDAtt || len(acl.Payload) == 0 {
				continue
			}
			rsp := srv.handle(acl.Payload)
			if rsp == nil {
				continue
			}
			if _, err := d.t.Write(hci.MarshalACL(conn, hci.CIDAtt, rsp)); err != nil {
				return errors.Wrapf(ErrSocket, "gatt: send response: %v", err)
			}
		}
	}

	if err := d.cmd.Send(&hci.LESetAdvertiseEnable{}); err != nil {
		logrus.WithError(err).Debug("gatt: advertising disable")
	}
	d.advertising = false
	logrus.Debug("gatt: server stopped")
	return nil
}
