package hci

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Channel is the kind of HCI channel a socket is bound to.
type Channel int

const (
	// ChannelUser is the exclusive user channel (Linux 3.14+). It bypasses
	// the kernel stack, so the binder must bring the controller up itself.
	ChannelUser Channel = iota
	// ChannelRaw shares the controller with the kernel stack. An event
	// filter is installed so only HCI event packets are delivered.
	ChannelRaw
)

func (c Channel) String() string {
	if c == ChannelUser {
		return "user"
	}
	return "raw"
}

// BlueZ socket-level option names for HCI sockets.
const (
	solHCI       = 0
	hciFilterOpt = 2
)

// Socket is a raw AF_BLUETOOTH socket bound to one controller device.
type Socket struct {
	fd      int
	dev     int
	channel Channel

	rmu sync.Mutex
	wmu sync.Mutex
}

// Open binds a raw HCI socket to controller device dev. The exclusive user
// channel is attempted first; if the kernel refuses it (adapter up, channel
// unsupported, insufficient privilege) the socket is reopened on the shared
// raw channel with an event filter installed.
func Open(dev int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(openErr(err), "create hci socket")
	}

	sa := unix.SockaddrHCI{Dev: uint16(dev), Channel: unix.HCI_CHANNEL_USER}
	if err := unix.Bind(fd, &sa); err == nil {
		logrus.Debugf("hci%d: bound to user channel (exclusive)", dev)
		return &Socket{fd: fd, dev: dev, channel: ChannelUser}, nil
	}

	// The user channel needs the adapter down and CAP_NET_ADMIN; retry on a
	// fresh socket with the raw channel.
	unix.Close(fd)
	fd, err = unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(openErr(err), "create hci socket")
	}
	sa = unix.SockaddrHCI{Dev: uint16(dev), Channel: unix.HCI_CHANNEL_RAW}
	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(ErrNoAdapter, "bind hci%d", dev)
	}
	if err := setEventFilter(fd); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "set hci event filter")
	}
	logrus.Debugf("hci%d: bound to raw channel (shared)", dev)
	return &Socket{fd: fd, dev: dev, channel: ChannelRaw}, nil
}

func openErr(err error) error {
	if err == unix.EPERM || err == unix.EACCES {
		return ErrPermission
	}
	return err
}

// setEventFilter installs a struct hci_filter that passes every HCI event
// packet: type_mask (u32), event_mask (2 x u32), opcode (u16), all
// little-endian.
func setEventFilter(fd int) error {
	f := make([]byte, 14)
	binary.LittleEndian.PutUint32(f[0:], 1<<uint(PktEvent))
	binary.LittleEndian.PutUint32(f[4:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(f[8:], 0xFFFFFFFF)
	return unix.SetsockoptString(fd, solHCI, hciFilterOpt, string(f))
}

// Channel reports which HCI channel the socket is bound to.
func (s *Socket) Channel() Channel { return s.channel }

// Device reports the controller device index the socket is bound to.
func (s *Socket) Device() int { return s.dev }

// SetReadTimeout arms a receive deadline on the socket. Reads that hit the
// deadline return ErrReadTimeout.
func (s *Socket) SetReadTimeout(d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

// Read reads one HCI packet into p.
func (s *Socket) Read(p []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	n, err := unix.Read(s.fd, p)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, ErrReadTimeout
	}
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write writes all of p to the socket.
func (s *Socket) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	written := 0
	for written < len(p) {
		n, err := unix.Write(s.fd, p[written:])
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Close releases the socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}
