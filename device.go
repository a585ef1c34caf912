package blehal

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bluelark/blehal/hci"
)

// Device is an exclusive handle on one Bluetooth controller. All methods
// serialize on the Device: whichever call is running owns the controller
// socket until it returns. Construct with NewDevice and call Init before
// use.
type Device struct {
	mu sync.Mutex

	t   hci.Transport
	cmd *hci.Cmd

	devID int    // controller index, -1 selects automatically
	hello string // value served by the readable characteristic

	scanning    bool
	advertising bool
	results     []ScanResult
}

// NewDevice returns an unopened Device configured by opts.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		devID: -1,
		hello: defaultHelloMessage,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init binds a controller socket and brings the controller up. It fails
// with ErrAlreadyInitialized on an open Device, ErrPermissionDenied when
// the process lacks raw-socket privilege, and ErrNoAdapter when no
// controller answers.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		return ErrAlreadyInitialized
	}
	var (
		s   *hci.Socket
		err error
	)
	if d.devID >= 0 {
		s, err = hci.OpenDevice(d.devID)
	} else {
		s, err = hci.OpenAdapter()
	}
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"device":  s.Device(),
		"channel": s.Channel(),
	}).Debug("device: controller bound")
	d.t = s
	d.cmd = hci.NewCmd(s)
	return nil
}

// Close releases the controller socket. A scan left running is disabled
// first, best effort. Advertising is not disabled: whether the controller
// keeps advertising after the socket closes is up to the kernel channel
// the socket was bound to.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNotInitialized
	}
	if d.scanning {
		if err := d.cmd.Send(&hci.LESetScanEnable{}); err != nil {
			logrus.WithError(err).Debug("device: scan disable on close")
		}
		d.scanning = false
	}
	err := d.t.Close()
	d.t = nil
	d.cmd = nil
	return err
}
