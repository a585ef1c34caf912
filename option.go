package blehal

// An Option configures a Device at construction time.
type Option func(*Device)

// defaultHelloMessage is served by the readable characteristic unless
// WithHelloMessage overrides it.
const defaultHelloMessage = "Hello from blehal!"

// WithDeviceID pins the Device to the HCI controller with index n
// instead of probing hci0 and hci1 in order.
func WithDeviceID(n int) Option {
	return func(d *Device) { d.devID = n }
}

// WithHelloMessage sets the value served by the readable characteristic.
func WithHelloMessage(s string) Option {
	return func(d *Device) { d.hello = s }
}
