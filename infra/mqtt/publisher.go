package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremetrics "github.com/kilianp07/bmsim/core/metrics"
	"github.com/kilianp07/bmsim/infra/logger"
)

// Config defines the connection parameters for the telemetry publisher.
type Config struct {
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	TopicBase string `json:"topic_base"`
	QoS       byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TopicBase == "" {
		c.TopicBase = "bms"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}

// pahoClient is the subset of the Paho client the publisher relies on.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher streams pack snapshots to an MQTT broker, one JSON message per
// step on <topic_base>/<run_id>/state. It implements the metrics sink
// interface so it can sit in the same fan-out as the other sinks.
type Publisher struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := cfg.ClientID
	if id == "" {
		id = "bmsim-" + uuid.NewString()
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(id).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	logg := logger.New("mqtt-publisher")
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	logg.Infof("connected to %s as %s", cfg.Broker, id)
	return &Publisher{
		cli:   cli,
		topic: cfg.TopicBase,
		qos:   cfg.QoS,
		log:   logg,
	}, nil
}

type stateMessage struct {
	RunID       string  `json:"run_id"`
	Step        int     `json:"step"`
	SimTimeS    float64 `json:"sim_time_s"`
	PackVoltage float64 `json:"pack_voltage_v"`
	AverageSOC  float64 `json:"avg_soc_pct"`
	AverageSOH  float64 `json:"avg_soh_pct"`
	AverageTemp float64 `json:"avg_temp_c"`
	Cycles      int     `json:"cycles"`
	Timestamp   string  `json:"timestamp"`
}

// RecordPackState publishes the snapshot.
func (p *Publisher) RecordPackState(ev coremetrics.PackStateEvent) error {
	msg := stateMessage{
		RunID:       ev.RunID,
		Step:        ev.Step,
		SimTimeS:    ev.SimTime.Seconds(),
		PackVoltage: ev.PackVoltage,
		AverageSOC:  ev.AverageSOC,
		AverageSOH:  ev.AverageSOH,
		AverageTemp: ev.AverageTemp,
		Cycles:      ev.Cycles,
		Timestamp:   ev.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	topic := fmt.Sprintf("%s/%s/state", p.topic, ev.RunID)
	token := p.cli.Publish(topic, p.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish state: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
