// Package mqtt publishes BLE scan results to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Result is the JSON document published for one sighted device.
type Result struct {
	Address     string `json:"address"`
	AddressType string `json:"address_type"`
	RSSI        int8   `json:"rssi"`
	Name        string `json:"name,omitempty"`
}

// Publisher owns one connection to a broker. Each result is published
// retained at QoS 0 under <topic>/<address>, so late subscribers still
// see the most recent sighting per device.
type Publisher struct {
	client paho.Client
	topic  string
}

// NewPublisher configures a client for the broker. Connect must succeed
// before Publish is called.
func NewPublisher(broker, clientID, topic string) *Publisher {
	opts := paho.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	return &Publisher{client: paho.NewClient(opts), topic: topic}
}

// Connect dials the broker and blocks until the connection settles.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	token.Wait()
	return token.Error()
}

// Publish sends one result and blocks until the broker acknowledges it.
func (p *Publisher) Publish(r Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic+"/"+r.Address, 0, true, payload)
	token.Wait()
	return token.Error()
}

// Disconnect flushes outstanding work and drops the connection.
func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}
