// Package alerts delivers alert schedules and evaluation state to paired
// screens over MQTT.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

const (
	qos            = 1
	publishTimeout = 5 * time.Second
	disconnectWait = 250
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the subset of mqtt.Client used here.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

// Connect dials the broker and returns a client that reconnects on its own.
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10*time.Second) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", brokerURL, err)
	}

	log.Info().Str("broker", brokerURL).Str("client_id", clientID).Msg("MQTT client initialized")
	return client, nil
}

// Disconnect closes the client, letting in-flight work drain briefly.
func Disconnect(client mqtt.Client) {
	if client != nil && client.IsConnected() {
		client.Disconnect(disconnectWait)
		log.Info().Msg("MQTT client disconnected")
	}
}

// AlertsTopic carries alert schedule commands for one device.
func AlertsTopic(deviceID string) string {
	return fmt.Sprintf("athan/%s/alerts", deviceID)
}

// StateTopic carries the retained evaluation state for one device.
func StateTopic(deviceID string) string {
	return fmt.Sprintf("athan/%s/state", deviceID)
}

type command struct {
	Type    string                     `json:"type"`
	Trigger *model.NotificationTrigger `json:"trigger,omitempty"`
}

// Scheduler installs alerts on a device by publishing commands to its topic.
type Scheduler struct {
	pub      Publisher
	deviceID string
}

func NewScheduler(pub Publisher, deviceID string) *Scheduler {
	return &Scheduler{pub: pub, deviceID: deviceID}
}

func (s *Scheduler) CancelAll(ctx context.Context) error {
	return publish(ctx, s.pub, AlertsTopic(s.deviceID), false, command{Type: "cancel_all"})
}

func (s *Scheduler) Install(ctx context.Context, t model.NotificationTrigger) error {
	return publish(ctx, s.pub, AlertsTopic(s.deviceID), false, command{Type: "install", Trigger: &t})
}

// State is the payload screens render.
type State struct {
	Location   string           `json:"location"`
	Evaluation model.Evaluation `json:"evaluation"`
	Prayers    []model.Prayer   `json:"prayers"`
	At         time.Time        `json:"at"`
}

// StatePublisher pushes the retained state so screens that come online late
// still get the latest view.
type StatePublisher struct {
	pub      Publisher
	deviceID string
}

func NewStatePublisher(pub Publisher, deviceID string) *StatePublisher {
	return &StatePublisher{pub: pub, deviceID: deviceID}
}

func (s *StatePublisher) PublishState(ctx context.Context, st State) error {
	return publish(ctx, s.pub, StateTopic(s.deviceID), true, st)
}

func publish(ctx context.Context, pub Publisher, topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}

	token := pub.Publish(topic, qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("%s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Debug().Str("topic", topic).Msg("message published")
	return nil
}
