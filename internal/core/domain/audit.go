package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Audit severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// AuditEntry is one row of the append-only audit ledger. ID is monotonic,
// Hash is finalised once after insert and never altered afterwards.
type AuditEntry struct {
	ID           int64     `json:"id"`
	ActorID      *string   `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Details      string    `json:"details,omitempty"`
	Severity     string    `json:"severity"`
	Hash         string    `json:"log_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanonicalString renders the hashed fields in their fixed order. Any change
// to any field changes this string and therefore breaks the stored hash.
func (e *AuditEntry) CanonicalString() string {
	actor := ""
	if e.ActorID != nil {
		actor = *e.ActorID
	}
	return strings.Join([]string{
		strconv.FormatInt(e.ID, 10),
		actor,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.IPAddress,
		e.UserAgent,
		e.Details,
		e.Severity,
	}, ":")
}

// ComputeHash returns the hex SHA-256 digest of the canonical entry string.
func (e *AuditEntry) ComputeHash() string {
	sum := sha256.Sum256([]byte(e.CanonicalString()))
	return hex.EncodeToString(sum[:])
}

// VerifyHash recomputes the digest from the stored fields and compares it to
// the stored hash. Note: this detects per-row tampering only; deletion or
// reordering of rows is not covered because entries are not chained.
func (e *AuditEntry) VerifyHash() error {
	if e.Hash == "" {
		return fmt.Errorf("audit entry %d: %w", e.ID, ErrHashMissing)
	}
	if e.ComputeHash() != e.Hash {
		return fmt.Errorf("audit entry %d: %w", e.ID, ErrHashMismatch)
	}
	return nil
}
