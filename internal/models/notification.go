package models

import "time"

type ActionKind string

const (
	ActionEvacuation      ActionKind = "evacuation"
	ActionAlert           ActionKind = "alert"
	ActionResourceRequest ActionKind = "resource_request"
	ActionAllClear        ActionKind = "all_clear"
)

func (a ActionKind) IsValid() bool {
	switch a {
	case ActionEvacuation, ActionAlert, ActionResourceRequest, ActionAllClear:
		return true
	}
	return false
}

type RecordStatus string

const (
	StatusPending RecordStatus = "pending"
	StatusSuccess RecordStatus = "success"
	StatusError   RecordStatus = "error"
)

type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type RecipientGroup struct {
	TeamName string    `json:"team_name"`
	Lead     Contact   `json:"lead"`
	Members  []Contact `json:"members"`
}

// RecipientCount summarizes one slice of a dispatch batch's audience
// (lead, members, region devices) without exposing the contact list.
type RecipientCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// NotificationRecord tracks one dispatch batch. A record is created in
// pending state and transitions exactly once to success or error; a failed
// batch is never re-dispatched under the same record.
type NotificationRecord struct {
	ID         string           `json:"id"`
	Action     ActionKind       `json:"action"`
	Region     string           `json:"region"`
	Status     RecordStatus     `json:"status"`
	Recipients []RecipientCount `json:"recipients"`
	CreatedAt  time.Time        `json:"created_at"`
}
