package entity

import (
	"time"
)

type ActionType string

const (
	ActionCreate ActionType = "Create"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
	ActionRename ActionType = "Rename"
)

const (
	EntityTask    = "task"
	EntitySection = "section"
)

type BoardAudit struct {
	ID         string     `json:"id"`
	Action     ActionType `json:"action"`
	EntityType string     `json:"entityType"`
	EntityID   string     `json:"entityId"`
	OldValues  *string    `json:"oldValues"`
	NewValues  *string    `json:"newValues"`
	Changes    *string    `json:"changes"`
	ChangedAt  time.Time  `json:"changedAt"`
}

type AuditMessage struct {
	Action     ActionType     `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OldValues  map[string]any `json:"old_values"`
	NewValues  map[string]any `json:"new_values"`
	Changes    map[string]any `json:"changes"`
	Timestamp  time.Time      `json:"timestamp"`
}
