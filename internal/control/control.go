// Package control defines the command contract between the API process and
// the indexing worker.
package control

import (
	"encoding/json"
	"fmt"
)

// Queue is the RabbitMQ queue the worker consumes commands from.
const Queue = "wallet_tracking_control"

type Command string

const (
	CmdStartTracking Command = "start_tracking"
	CmdStopTracking  Command = "stop_tracking"
	CmdSetAddresses  Command = "set_addresses"
)

// Message is one command for the worker. Addresses is set for
// start_tracking and set_addresses.
type Message struct {
	Command   Command  `json:"command"`
	Addresses []string `json:"addresses,omitempty"`
}

// Parse decodes and validates one queue message.
func Parse(body []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode control message: %w", err)
	}
	switch msg.Command {
	case CmdStartTracking, CmdStopTracking, CmdSetAddresses:
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown control command %q", msg.Command)
	}
}
