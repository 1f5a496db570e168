package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIngestionUnavailable means the connection source could not be read at all.
	ErrIngestionUnavailable = errors.New("connection source unavailable")

	// ErrServiceUnavailable is returned by queries while no network is loaded.
	ErrServiceUnavailable = errors.New("network not loaded")

	// ErrInternalInconsistency flags a path that references an edge the graph does not have.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// UnknownStationError names a display name absent from the alias index.
type UnknownStationError struct {
	Name string
}

func (e *UnknownStationError) Error() string {
	return fmt.Sprintf("station not found: %s", e.Name)
}

// NoRouteError is returned when both stations exist but nothing connects them.
type NoRouteError struct {
	Start string
	End   string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route between %s and %s", e.Start, e.End)
}

// MalformedRecordError describes a single ingestion row that was rejected.
type MalformedRecordError struct {
	Row    int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
