package ports

// AuditEvent is the payload components hand to the audit ledger.
type AuditEvent struct {
	ActorID      *string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	UserAgent    string
	Details      string
	Severity     string
}

// AuditEmitter delivers events to the audit ledger best-effort. Emit must
// never block the caller or surface delivery failures to it.
type AuditEmitter interface {
	Emit(event AuditEvent)
}
