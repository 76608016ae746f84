package models

import (
	"time"

	"github.com/google/uuid"
)

// NeverVisited is the label shown for a location nobody has checked in to yet.
const NeverVisited = "Never"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is a single validated entry of a location dataset. Coordinates are
// fixed for the lifetime of a load.
type Record struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"` // filled by reverse geocoding, optional
}

func (r Record) Coordinates() Coordinates {
	return Coordinates{Lat: r.Latitude, Lon: r.Longitude}
}

// Snapshot is the immutable state of a location at a point in time.
// LastVisitedAt is nil if and only if VisitCount is zero.
type Snapshot struct {
	Name          string     `json:"name"`
	VisitCount    int        `json:"visitCount"`
	LastVisitedAt *time.Time `json:"lastVisitedAt,omitempty"`
}

func (s Snapshot) Visited() bool {
	return s.VisitCount > 0
}

// LastVisitedLabel formats LastVisitedAt with layout, or returns NeverVisited.
func (s Snapshot) LastVisitedLabel(layout string) string {
	if s.LastVisitedAt == nil {
		return NeverVisited
	}
	return s.LastVisitedAt.Format(layout)
}

// VisitEvent is the record of one check-in as it leaves the process, either
// on the event topic or into the visit log.
type VisitEvent struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	VisitCount int       `json:"visitCount"`
	VisitedAt  time.Time `json:"visitedAt"`
}

// NewVisitEvent builds the event for a snapshot returned by a check-in.
func NewVisitEvent(s Snapshot) VisitEvent {
	ev := VisitEvent{
		ID:         uuid.New(),
		Name:       s.Name,
		VisitCount: s.VisitCount,
	}
	if s.LastVisitedAt != nil {
		ev.VisitedAt = *s.LastVisitedAt
	}
	return ev
}

// Action names the interaction carried by a Command.
type Action string

const (
	ActionCheckIn Action = "check_in"
	ActionSelect  Action = "select"
)

// Command is an interaction event raised outside the process, e.g. a kiosk
// publishing check-ins to Kafka.
type Command struct {
	Action Action `json:"action"`
	Name   string `json:"name"`
}
