package audit

import (
	"context"
	"time"
)

// Action identifies what happened in an audit event.
type Action string

const (
	ActionOrgCreated          Action = "org_created"
	ActionOrgUpdated          Action = "org_updated"
	ActionOrgDeleted          Action = "org_deleted"
	ActionCollectionMigrated  Action = "collection_migrated"
	ActionPartialFailure      Action = "partial_failure"
	ActionAdminLoginSucceeded Action = "admin_login_succeeded"
	ActionAdminLoginFailed    Action = "admin_login_failed"
	ActionLoginLockout        Action = "login_lockout_triggered"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp        time.Time `json:"timestamp"`
	RequestID        string    `json:"request_id,omitempty"`
	Action           Action    `json:"action"`
	OrganizationName string    `json:"organization_name,omitempty"`
	AdminEmail       string    `json:"admin_email,omitempty"`
	Detail           string    `json:"detail,omitempty"`
}

// Store is an append-only audit event store with query support.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByOrganization(ctx context.Context, name string) ([]Event, error)
}

// Sink receives audit events for delivery to an external system.
type Sink interface {
	Write(ctx context.Context, event Event) error
}
