package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// The ledger hash is a content fingerprint, not a security primitive:
// nothing re-derives it for authentication. Determinism is the hard
// requirement, so the serialization below keeps a fixed field order and
// a fixed delimiter and must never change shape.

// CommitmentHash fingerprints a sprint's committed scope at lock time.
func CommitmentHash(sprintID string, goalIDs, taskIDs []string) string {
	payload := fmt.Sprintf("commitment|%s|goals:%s|tasks:%s",
		sprintID, strings.Join(goalIDs, ","), strings.Join(taskIDs, ","))
	return digest(payload)
}

// CompletionHash fingerprints a sprint's outcome at close time.
func CompletionHash(sprintID string, pct, completed, total int, blockedIDs, missedGoalIDs []string) string {
	payload := fmt.Sprintf("completion|%s|pct:%d|done:%d|total:%d|blocked:%s|missed:%s",
		sprintID, pct, completed, total,
		strings.Join(blockedIDs, ","), strings.Join(missedGoalIDs, ","))
	return digest(payload)
}

func digest(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
