// Command bledemo exercises the blehal driver from the terminal: scan
// for nearby advertisers, advertise a name, run the demo GATT server,
// and publish scan results to an MQTT broker. The shell command enters
// an interactive loop with spawn/kill/mem commands for poking at
// goroutine and heap behavior alongside the radio.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/bluelark/blehal"
	"github.com/bluelark/blehal/internal/config"
	"github.com/bluelark/blehal/internal/mqtt"
)

var cfg *config.Config

func main() {
	if debug, _ := strconv.ParseBool(os.Getenv("DEBUG")); debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	app := cli.NewApp()
	app.Name = "bledemo"
	app.Usage = "exercise the blehal BLE driver"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "YAML configuration file"},
	}

	app.Commands = []cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"b"},
			Usage:   "Scan for nearby advertisers",
			Action:  scan,
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "duration, d", Usage: "scan budget (default from config)"},
			},
		},
		{
			Name:    "advertise",
			Aliases: []string{"a"},
			Usage:   "Advertise until Enter is pressed",
			Action:  advertise,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name, n", Usage: "advertised name (default from config)"},
			},
		},
		{
			Name:    "serve",
			Aliases: []string{"g"},
			Usage:   "Run the demo GATT server",
			Action:  serve,
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "duration, d", Usage: "serve budget (default from config)"},
				cli.StringFlag{Name: "name, n", Usage: "advertised name (default from config)"},
			},
		},
		{
			Name:    "publish",
			Aliases: []string{"p"},
			Usage:   "Scan once and publish the results to MQTT",
			Action:  publish,
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "duration, d", Usage: "scan budget (default from config)"},
			},
		},
		{
			Name:    "spawn",
			Aliases: []string{"s"},
			Usage:   "Start a ticker worker",
			Action:  spawn,
		},
		{
			Name:    "kill",
			Aliases: []string{"t"},
			Usage:   "Stop the most recently spawned worker",
			Action:  kill,
		},
		{
			Name:    "mem",
			Aliases: []string{"m"},
			Usage:   "Print heap statistics and the live worker count",
			Action:  mem,
		},
		{
			Name:    "shell",
			Aliases: []string{"sh"},
			Usage:   "Enter interactive mode",
			Action:  func(c *cli.Context) error { return shell(app) },
		},
	}

	app.Before = setup
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("bledemo failed")
	}
}

// setup loads the configuration once; re-dispatches from the shell reuse
// the cached one.
func setup(c *cli.Context) error {
	if cfg != nil {
		return nil
	}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return errors.Wrap(err, "can't load config")
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	return errors.Wrap(cfg.Validate(), "invalid config")
}

// openDevice binds a controller per the configuration, printing the
// raw-socket privilege hint when that is what stands in the way.
func openDevice() (*blehal.Device, error) {
	var opts []blehal.Option
	if cfg.Adapter >= 0 {
		opts = append(opts, blehal.WithDeviceID(cfg.Adapter))
	}
	if cfg.Hello != "" {
		opts = append(opts, blehal.WithHelloMessage(cfg.Hello))
	}
	d := blehal.NewDevice(opts...)
	fmt.Println("Initializing BLE...")
	if err := d.Init(); err != nil {
		if errors.Cause(err) == blehal.ErrPermissionDenied {
			fmt.Println("(try running with sudo for raw socket access)")
		}
		return nil, errors.Wrap(err, "can't init device")
	}
	return d, nil
}

func closeDevice(d *blehal.Device) {
	if err := d.Close(); err != nil {
		logrus.WithError(err).Debug("device close")
	}
}

func scan(c *cli.Context) error {
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(d)

	dur := c.Duration("duration")
	if dur == 0 {
		dur = cfg.ScanDuration()
	}
	fmt.Printf("Scanning for %s...\n", dur)
	if err := d.Scan(dur); err != nil {
		return errors.Wrap(err, "can't scan")
	}
	results, err := d.ScanResults()
	if err != nil {
		return errors.Wrap(err, "can't get scan results")
	}
	printResults(results)
	return nil
}

func printResults(results []blehal.ScanResult) {
	if len(results) == 0 {
		fmt.Println("No devices found")
		return
	}
	fmt.Printf("Found %d device(s):\n", len(results))
	for _, r := range results {
		name := r.Name
		if name == "" {
			name = "<unknown>"
		}
		fmt.Printf("  %s (%s) RSSI: %d dBm  Name: %s\n", r.Address, r.AddressType, r.RSSI, name)
	}
}

func advertise(c *cli.Context) error {
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(d)

	name := c.String("name")
	if name == "" {
		name = cfg.Name
	}
	if err := d.StartAdvertising(name); err != nil {
		return errors.Wrap(err, "can't advertise")
	}
	fmt.Printf("Advertising as %q. Press Enter to stop...\n", name)
	if _, err := stdin.ReadString('\n'); err != nil {
		logrus.WithError(err).Debug("stdin read")
	}
	if err := d.StopAdvertising(); err != nil {
		return errors.Wrap(err, "can't stop advertising")
	}
	fmt.Println("Advertising stopped")
	return nil
}

func serve(c *cli.Context) error {
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(d)

	name := c.String("name")
	if name == "" {
		name = cfg.Name
	}
	dur := c.Duration("duration")
	if dur == 0 {
		dur = cfg.ServeDuration()
	}

	fmt.Printf("Running GATT server as %q for up to %s\n", name, dur)
	fmt.Println("Connect with a BLE central (nRF Connect works):")
	fmt.Println("  Service UUID: 0x1234")
	fmt.Printf("  - Read characteristic (handle 3): returns %q\n", cfg.Hello)
	fmt.Println("  - Write characteristic (handle 5): accepts up to 32 bytes")
	fmt.Println()
	if err := d.Serve(name, dur); err != nil {
		return errors.Wrap(err, "GATT server failed")
	}
	fmt.Println("GATT server finished")
	return nil
}

func publish(c *cli.Context) error {
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer closeDevice(d)

	pub := mqtt.NewPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
	if err := pub.Connect(); err != nil {
		return errors.Wrap(err, "can't connect to MQTT broker")
	}
	defer pub.Disconnect()

	dur := c.Duration("duration")
	if dur == 0 {
		dur = cfg.ScanDuration()
	}
	fmt.Printf("Scanning for %s...\n", dur)
	if err := d.Scan(dur); err != nil {
		return errors.Wrap(err, "can't scan")
	}
	results, err := d.ScanResults()
	if err != nil {
		return errors.Wrap(err, "can't get scan results")
	}

	published := 0
	for _, r := range results {
		msg := mqtt.Result{
			Address:     r.Address.String(),
			AddressType: r.AddressType.String(),
			RSSI:        r.RSSI,
			Name:        r.Name,
		}
		if err := pub.Publish(msg); err != nil {
			logrus.WithError(err).Errorf("can't publish %s", msg.Address)
			continue
		}
		logrus.Debugf("published %s/%s", cfg.MQTT.Topic, msg.Address)
		published++
	}
	fmt.Printf("Published %d of %d result(s) to %s\n", published, len(results), cfg.MQTT.Topic)
	return nil
}
