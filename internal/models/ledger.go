package models

import "time"

// Ledger entry kinds.
const (
	LedgerCommitment = "commitment"
	LedgerCompletion = "completion"
)

// LedgerEntry is an append-only record of a sprint commitment or
// completion. Hash is a deterministic content fingerprint of the event;
// PrevHash links to the workspace's previous entry, forming a verifiable
// chain. Entries are never updated or deleted.
type LedgerEntry struct {
	ID             string `gorm:"primaryKey;size:32"`
	WorkspaceID    string `gorm:"size:32;index"`
	SprintID       string `gorm:"size:32;index"`
	Type           string `gorm:"size:16;not null"`
	Hash           string `gorm:"size:64;not null"`
	PrevHash       string `gorm:"size:64"`
	Timestamp      time.Time
	PayloadSummary string `gorm:"type:text"`
}
