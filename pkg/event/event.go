// Package event records user-facing analytics events and debug dumps as
// structured log entries.
package event

import (
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Params describes the context of a tracked action. Empty fields are left
// out of the log entry.
type Params struct {
	Network        string `json:"network,omitempty"`
	ButtonLocation string `json:"buttonLocation,omitempty"`
	ConnectionType string `json:"connectionType,omitempty"`
	ConnectionName string `json:"connectionName,omitempty"`
	ErrorReason    string `json:"errorReason,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (p Params) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	add := func(key, val string) {
		if val != "" {
			enc.AddString(key, val)
		}
	}
	add("network", p.Network)
	add("button_location", p.ButtonLocation)
	add("connection_type", p.ConnectionType)
	add("connection_name", p.ConnectionName)
	add("error_reason", p.ErrorReason)
	add("error_message", p.ErrorMessage)
	return nil
}

// Tracker writes events to a zap logger at debug level.
type Tracker struct {
	log *zap.Logger
}

// NewTracker returns a Tracker logging to log, or to the global logger when nil.
func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.L()
	}
	return &Tracker{log: log.Named("event")}
}

// Track records action with its parameters.
func (t *Tracker) Track(action string, p Params) {
	t.log.Debug("event", zap.String("action", action), zap.Object("params", p))
}

// Debug logs every entry of fields on its own line, ordered by key.
func (t *Tracker) Debug(fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		t.log.Debug(k, zap.Any("value", fields[k]))
	}
}
