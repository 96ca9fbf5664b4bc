// Package hashchain links ledger records into a per-user tamper-evident
// chain: every record's hash covers its identifying fields plus the hash of
// the record before it, so mutating any stored record breaks verification of
// everything after it.
package hashchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Genesis is the previous-hash of the first record in a chain.
var Genesis = strings.Repeat("0", 64)

// Record carries the fields covered by the chain hash.
type Record struct {
	ID           string
	UserID       int64
	Type         string
	Amount       int64
	CreatedAt    time.Time
	PreviousHash string
	Hash         string
}

// Compute returns the hex SHA-256 over the record's covered fields and the
// given previous hash.
func Compute(id string, userID int64, typ string, amount int64, createdAt time.Time, previousHash string) string {
	input := fmt.Sprintf("%s|%d|%s|%d|%d|%s", id, userID, typ, amount, createdAt.UTC().UnixNano(), previousHash)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Verify walks records in creation order, recomputing every hash and checking
// linkage. It stops at the first mismatch and returns the offending record id.
func Verify(records []Record) (bool, string) {
	prev := Genesis
	for _, r := range records {
		if r.PreviousHash != prev {
			return false, r.ID
		}
		if Compute(r.ID, r.UserID, r.Type, r.Amount, r.CreatedAt, r.PreviousHash) != r.Hash {
			return false, r.ID
		}
		prev = r.Hash
	}
	return true, ""
}
