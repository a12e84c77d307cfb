package save

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ashvale/duskfall/internal/core"
)

// snapshotChecksum hashes the canonical JSON form of a snapshot. Go
// marshals map keys in sorted order, so round-tripping through an untyped
// value yields a stable byte form regardless of struct field layout.
func snapshotChecksum(snap core.GameSnapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return rawChecksum(raw)
}

// rawChecksum canonicalizes already-serialized snapshot JSON and hashes it.
func rawChecksum(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
