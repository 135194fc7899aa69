package model

import (
	"fmt"
	"strings"
)

// SensorErrorKind classifies probe read failures.
type SensorErrorKind string

const (
	SensorPartialFailure SensorErrorKind = "partial_failure"
	SensorOutOfRange     SensorErrorKind = "out_of_range"
	SensorTimeout        SensorErrorKind = "timeout"
)

// SensorError is returned by the reader when one or more channels fail.
// Channels lists every channel that did not produce a valid value.
type SensorError struct {
	Kind     SensorErrorKind
	Channels []string
	Err      error
}

func (e *SensorError) Error() string {
	msg := fmt.Sprintf("sensor %s", e.Kind)
	if len(e.Channels) > 0 {
		msg += " [" + strings.Join(e.Channels, ",") + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SensorError) Unwrap() error { return e.Err }

// NetworkErrorKind classifies upload failures.
type NetworkErrorKind string

const (
	NetworkUnreachable NetworkErrorKind = "unreachable"
	NetworkTimeout     NetworkErrorKind = "timeout"
	NetworkAuthFailure NetworkErrorKind = "auth_failure"
)

type NetworkError struct {
	Kind NetworkErrorKind
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("network %s", e.Kind)
}

func (e *NetworkError) Unwrap() error { return e.Err }
