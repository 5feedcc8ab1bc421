package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

func TestCommandRoutingKey(t *testing.T) {
	testCases := []struct {
		commandType model.CommandType
		expected    string
	}{
		{model.CommandTakeoff, "command.takeoff"},
		{model.CommandLand, "command.land"},
		{model.CommandGoto, "command.goto"},
		{model.CommandReturnHome, "command.return_home"},
		{model.CommandSetSpeed, "command.set_speed"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := CommandRoutingKey(tc.commandType); got != tc.expected {
				t.Errorf("expected routing key %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestEnvelopeRoundtrip(t *testing.T) {
	env := Envelope{
		ID:        "b5c7d1fa-2e1b-4a60-9f3d-1f8b3c9a0e11",
		Kind:      "command",
		DroneID:   42,
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Payload:   json.RawMessage(`{"command_type":"takeoff"}`),
	}

	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.ID != env.ID || decoded.Kind != env.Kind || decoded.DroneID != env.DroneID {
		t.Errorf("expected %+v, got %+v", env, decoded)
	}
	if !decoded.Timestamp.Equal(env.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", env.Timestamp, decoded.Timestamp)
	}
	if string(decoded.Payload) != string(env.Payload) {
		t.Errorf("expected payload %s, got %s", env.Payload, decoded.Payload)
	}
}

func TestNilClientIsNoOp(t *testing.T) {
	var client *Client

	if err := client.DeclareTopology(); err != nil {
		t.Errorf("expected nil error from nil client, got %v", err)
	}
	if err := client.PublishEvent(context.Background(), "id", "drone_created", 1, map[string]string{"serial": "X1"}); err != nil {
		t.Errorf("expected nil error from nil client, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("expected nil error from nil client, got %v", err)
	}
}
