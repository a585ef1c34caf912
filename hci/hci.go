// Package hci speaks the Bluetooth Host Controller Interface over a raw
// BlueZ socket: framing and sending controller commands, correlating their
// completion events, and decoding the event and ACL packets a controller
// delivers. Higher layers own the read loop; this package only frames,
// parses, and moves bytes.
package hci

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// Transport is a raw packet connection to a Bluetooth controller. Each Read
// yields exactly one HCI packet. A read deadline set with SetReadTimeout
// makes subsequent reads fail with ErrReadTimeout instead of blocking.
type Transport interface {
	io.ReadWriteCloser
	SetReadTimeout(time.Duration) error
}

// Transport errors. ErrReadTimeout marks a read that hit the deadline and
// may simply be retried; the others are terminal for the operation.
var (
	ErrReadTimeout = errors.New("read timed out")
	ErrTimeout     = errors.New("Timeout occurred")
	ErrNoAdapter   = errors.New("No Bluetooth adapter available")
	ErrPermission  = errors.New("Permission denied")
)

// OpenDevice binds controller index dev. A socket bound to the user
// channel bypasses the kernel stack, so controller bring-up runs here
// before the socket is handed out; raw-channel sockets are returned as
// bound, since the kernel already owns bring-up there.
func OpenDevice(dev int) (*Socket, error) {
	s, err := Open(dev)
	if err != nil {
		return nil, err
	}
	if s.Channel() == ChannelUser {
		if err := NewCmd(s).InitUserChannel(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// OpenAdapter binds the first working controller, trying device index 0
// and then 1 (an adapter may re-enumerate after a reset). Returns
// ErrPermission when the caller lacks raw-socket privilege, ErrNoAdapter
// when no index could be bound.
func OpenAdapter() (*Socket, error) {
	var lastErr error
	for _, dev := range []int{0, 1} {
		s, err := OpenDevice(dev)
		if err != nil {
			lastErr = err
			continue
		}
		return s, nil
	}
	if errors.Cause(lastErr) == ErrPermission {
		return nil, lastErr
	}
	return nil, errors.Wrap(ErrNoAdapter, "tried hci0 and hci1")
}
