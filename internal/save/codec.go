package save

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/pbkdf2"

	"github.com/ashvale/duskfall/internal/core"
)

// On-disk blob layout: magic, format byte, 12-byte GCM nonce, ciphertext.
// The plaintext is the zstd-compressed JSON payload.
var blobMagic = []byte("DSKF")

const (
	blobFormat    = 1
	nonceSize     = 12
	kdfIterations = 64 * 1024
)

// kdfSalt is fixed per release. The passphrase itself is external
// configuration; see config.Config.Passphrase.
var kdfSalt = []byte("duskfall.save.v1")

// defaultPassphrase keeps saves readable when no passphrase is configured.
// This is obfuscation, not confidentiality; deployments wanting real
// protection must set DUSKFALL_PASSPHRASE.
const defaultPassphrase = "ember-under-ash"

// deriveKey stretches the passphrase into a 32-byte AES key.
func deriveKey(passphrase string) []byte {
	if passphrase == "" {
		passphrase = defaultPassphrase
	}
	return pbkdf2.Key([]byte(passphrase), kdfSalt, kdfIterations, 32, sha256.New)
}

// encode serializes, compresses and encrypts a payload.
func (e *Engine) encode(meta SaveMetadata, snap core.GameSnapshot) ([]byte, error) {
	rawSnap, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	plain, err := json.Marshal(payload{Meta: meta, Snapshot: rawSnap})
	if err != nil {
		return nil, err
	}

	var compressed bytes.Buffer
	zw, err := zstd.NewWriter(&compressed, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(plain); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	gcm, err := newGCM(e.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	blob := make([]byte, 0, len(blobMagic)+1+nonceSize+compressed.Len()+gcm.Overhead())
	blob = append(blob, blobMagic...)
	blob = append(blob, blobFormat)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, compressed.Bytes(), nil)
	return blob, nil
}

// decode reverses encode and verifies the embedded checksum. All failure
// paths return an error wrapping ErrCorrupt so the caller can fall back
// to backups.
func (e *Engine) decode(blob []byte) (core.GameSnapshot, SaveMetadata, error) {
	var zero core.GameSnapshot

	header := len(blobMagic) + 1 + nonceSize
	if len(blob) < header || !bytes.Equal(blob[:len(blobMagic)], blobMagic) {
		return zero, SaveMetadata{}, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	if blob[len(blobMagic)] != blobFormat {
		return zero, SaveMetadata{}, fmt.Errorf("%w: unknown blob format %d", ErrCorrupt, blob[len(blobMagic)])
	}
	nonce := blob[len(blobMagic)+1 : header]

	gcm, err := newGCM(e.key)
	if err != nil {
		return zero, SaveMetadata{}, err
	}
	compressed, err := gcm.Open(nil, nonce, blob[header:], nil)
	if err != nil {
		return zero, SaveMetadata{}, fmt.Errorf("%w: decrypt: %v", ErrCorrupt, err)
	}

	zr, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return zero, SaveMetadata{}, fmt.Errorf("%w: decompress: %v", ErrCorrupt, err)
	}
	plain, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return zero, SaveMetadata{}, fmt.Errorf("%w: decompress: %v", ErrCorrupt, err)
	}

	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return zero, SaveMetadata{}, fmt.Errorf("%w: decode: %v", ErrCorrupt, err)
	}

	// Integrity check runs over the snapshot exactly as stored, before
	// any migration rewrites it.
	sum, err := rawChecksum(p.Snapshot)
	if err != nil {
		return zero, SaveMetadata{}, fmt.Errorf("%w: checksum: %v", ErrCorrupt, err)
	}
	if sum != p.Meta.Checksum {
		return zero, SaveMetadata{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	rawSnap := p.Snapshot
	if p.Meta.Version != CurrentVersion {
		rawSnap, err = e.migrate(rawSnap, p.Meta.Version)
		if err != nil {
			return zero, SaveMetadata{}, fmt.Errorf("save: migrate v%d: %w", p.Meta.Version, err)
		}
		p.Meta.Version = CurrentVersion
	}

	var snap core.GameSnapshot
	if err := json.Unmarshal(rawSnap, &snap); err != nil {
		return zero, SaveMetadata{}, fmt.Errorf("%w: snapshot decode: %v", ErrCorrupt, err)
	}
	return snap, p.Meta, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
