package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table      string
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Label      string
	Changes    string
	CreatedAt  string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:      "system.auditlog",
	ID:         "id",
	ActorID:    "actorid",
	Action:     "action",
	EntityType: "entitytype",
	EntityID:   "entityid",
	Label:      "label",
	Changes:    "changes",
	CreatedAt:  "createdat",
}

func (t SystemAuditLogTable) Columns() []string {
	return []string{t.ID, t.ActorID, t.Action, t.EntityType, t.EntityID, t.Label, t.Changes, t.CreatedAt}
}
