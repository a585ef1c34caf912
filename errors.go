package blehal

import (
	"github.com/pkg/errors"

	"github.com/bluelark/blehal/hci"
)

// Sentinel errors reported by Device operations. Callers should unwrap
// with errors.Cause before comparing, since operations attach context.
var (
	ErrNotInitialized     = errors.New("BLE not initialized")
	ErrAlreadyInitialized = errors.New("BLE already initialized")
	ErrSocket             = errors.New("Socket creation failed")
	ErrBind               = errors.New("Bind failed")
	ErrScan               = errors.New("Scan failed")
	ErrConnection         = errors.New("Connection failed")
	ErrDisconnection      = errors.New("Disconnection failed")
	ErrGATT               = errors.New("GATT operation failed")
	ErrInvalidParameter   = errors.New("Invalid parameter")
	ErrNotSupported       = errors.New("Not supported on this platform")
	ErrDeviceNotFound     = errors.New("Device not found")

	// Shared with the hci package, which is where these conditions are
	// detected.
	ErrTimeout          = hci.ErrTimeout
	ErrPermissionDenied = hci.ErrPermission
	ErrNoAdapter        = hci.ErrNoAdapter
)
