package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is the name of a server-pushed realtime event.
type Event string

// Server -> client events (wire-stable).
const (
	EventSensorUpdate      Event = "sensor_update"
	EventAlertNotification Event = "alert_notification"
	EventRouteUpdate       Event = "route_update"
	EventBinStatusChange   Event = "bin_status_change"
	EventVehicleLocation   Event = "vehicle_location"
	EventCommandResponse   Event = "command_response"
)

// Client -> server message types (wire-stable).
const (
	MessageSubscribe     = "subscribe"
	MessageUnsubscribe   = "unsubscribe"
	MessageSensorCommand = "sensor_command"
)

// Realtime channels subscribed on every connect.
const (
	ChannelSensorUpdates = "sensor_updates"
	ChannelAlerts        = "alerts"
	ChannelRouteUpdates  = "route_updates"
)

// DefaultChannels returns the default subscription set in subscribe order.
func DefaultChannels() []string {
	return []string{ChannelSensorUpdates, ChannelAlerts, ChannelRouteUpdates}
}

// Events returns every event the client dispatches.
func Events() []Event {
	return []Event{
		EventSensorUpdate,
		EventAlertNotification,
		EventRouteUpdate,
		EventBinStatusChange,
		EventVehicleLocation,
		EventCommandResponse,
	}
}

// Known reports whether e is a dispatched event name.
func (e Event) Known() bool {
	for _, k := range Events() {
		if e == k {
			return true
		}
	}
	return false
}

// Envelope is the JSON frame exchanged on the realtime connection.
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Validate performs structural validation of an inbound envelope.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.Event) == "" {
		return errors.New("missing field: event")
	}
	if len(e.Data) > 0 && !json.Valid(e.Data) {
		return fmt.Errorf("invalid data for event %q", e.Event)
	}
	return nil
}

// NewEnvelope builds an outbound envelope stamped with the current time.
func NewEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: raw, Timestamp: time.Now().UTC()}, nil
}

// ChannelPayload is the body of subscribe/unsubscribe messages.
type ChannelPayload struct {
	Channel string `json:"channel"`
}

// SensorCommand is the body of a sensor_command message.
type SensorCommand struct {
	SensorID   string         `json:"sensor_id"`
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// AlertNotification is the part of an alert_notification payload the
// client inspects itself. Handlers still receive the full raw payload.
type AlertNotification struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	BinID    string   `json:"binId,omitempty"`
}

// SensorUpdate is the payload of a sensor_update event.
type SensorUpdate struct {
	Bin          int64     `json:"bin"`
	BinID        string    `json:"binId,omitempty"`
	FillLevel    float64   `json:"fillLevel"`
	BatteryLevel float64   `json:"batteryLevel"`
	Temperature  *float64  `json:"temperature,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// VehicleLocation is the payload of a vehicle_location event.
type VehicleLocation struct {
	Vehicle  int64       `json:"vehicle"`
	Location Coordinates `json:"location"`
	Speed    *float64    `json:"speed,omitempty"`
	Heading  *float64    `json:"heading,omitempty"`
}

// CommandResponse is the payload of a command_response event.
type CommandResponse struct {
	SensorID string          `json:"sensor_id"`
	Command  string          `json:"command"`
	Status   string          `json:"status"`
	Result   json.RawMessage `json:"result,omitempty"`
}
