package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents device-reported event types
type EventType string

const (
	EventTypeMotion       EventType = "MOTION"
	EventTypePersonDetect EventType = "PERSON_DETECTED"
	EventTypeCameraUp     EventType = "CAMERA_UP"
	EventTypeCameraDown   EventType = "CAMERA_DOWN"
	EventTypeHubUp        EventType = "HUB_UP"
	EventTypeHubDown      EventType = "HUB_DOWN"
	EventTypeError        EventType = "ERROR"
)

// EventLevel represents event severity levels
type EventLevel string

const (
	EventLevelDebug   EventLevel = "DEBUG"
	EventLevelInfo    EventLevel = "INFO"
	EventLevelWarning EventLevel = "WARNING"
	EventLevelError   EventLevel = "ERROR"
)

// Event represents an event reported by a hub
type Event struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	TenantID  int64      `json:"tenantId" db:"tenant_id"`
	HubSerial string     `json:"hubSerial" db:"hub_serial"`
	CameraID  *uuid.UUID `json:"cameraId,omitempty" db:"camera_id"`

	Type        EventType  `json:"type" db:"type"`
	Level       EventLevel `json:"level" db:"level"`
	Description string     `json:"description" db:"description"`

	Details Variables `json:"details,omitempty" db:"details"`
}

// EventFilters represents filters for event listings
type EventFilters struct {
	HubSerial *string
	Type      *EventType
	Since     *time.Time
}
