// Package blehal provides a Bluetooth Low Energy driver that speaks to the
// controller directly over a raw HCI socket, with no dependency on a
// resident host stack.
//
// A Device is an exclusive handle on one controller. Init binds the socket
// (exclusive user channel when the kernel grants it, shared raw channel
// with an event filter otherwise) and brings the controller up. An opened
// Device can scan for nearby advertisers, advertise a name, and serve a
// minimal fixed GATT database: one service with a readable hello
// characteristic and a writable 32-byte buffer.
//
//	d := blehal.NewDevice()
//	if err := d.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//	if err := d.Scan(3 * time.Second); err != nil {
//		log.Fatal(err)
//	}
//	results, _ := d.ScanResults()
//	for _, r := range results {
//		fmt.Println(r.Address, r.RSSI, r.Name)
//	}
//
// Every operation is synchronous and single-threaded: the calling
// goroutine owns the socket read loop until the operation's wall-clock
// budget elapses. Central-role operations (connecting out, client-side
// discovery) are not implemented; the stubs report ErrNotSupported.
//
// SETUP
//
// blehal only supports Linux. To gain complete and exclusive control of
// the HCI device it first tries HCI_CHANNEL_USER, falling back to
// HCI_CHANNEL_RAW when the user channel is busy or unavailable. For the
// user channel the device must be down and the built-in bluetooth daemon
// stopped:
//
//	sudo hciconfig hci0 down
//	sudo service bluetooth stop
//
// Because blehal programs administer network devices, they must either be
// run as root, or be granted appropriate capabilities:
//
//	sudo <executable>
//	# OR
//	sudo setcap 'CAP_NET_RAW,CAP_NET_ADMIN=+ep' <executable>
//	<executable>
package blehal
