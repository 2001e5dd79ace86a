// Package cursor implements opaque pagination cursor encryption and
// decryption via a pluggable KMS collaborator, falling back to
// pass-through when no KMS is configured.
package cursor

import (
	"context"
	"encoding/base64"

	"github.com/bitechdev/specgateway/pkg/logger"
)

// KMSClient encrypts and decrypts cursor bytes against a cloud KMS key.
// No concrete Cloud KMS SDK exists in the reference corpus for this
// module; NoopKMS and LocalAEADKMS are the two shipped implementations.
type KMSClient interface {
	Encrypt(ctx context.Context, keyRing, key, location, project string, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, keyRing, key, location, project string, ciphertext []byte) ([]byte, error)
}

// KeyInfo names the KMS key used to encrypt cursors. A zero-value
// KeyInfo (empty KeyRing) means "KMS not configured" and Codec falls
// back to pass-through.
type KeyInfo struct {
	KeyRing  string
	Key      string
	Location string
	Project  string
}

func (k KeyInfo) configured() bool {
	return k.KeyRing != "" && k.Key != ""
}

// Codec encrypts/decrypts opaque pagination cursors. On any KMS failure
// it returns a nil cursor rather than propagating the error, so the
// caller treats it as absent rather than as 500 or as a different
// cursor.
type Codec struct {
	client KMSClient
	info   KeyInfo
}

// NewCodec builds a Codec. When info is not configured, client is
// ignored and the codec passes cursor bytes through unencrypted.
func NewCodec(client KMSClient, info KeyInfo) *Codec {
	return &Codec{client: client, info: info}
}

// Encode encrypts (if configured) and base64url-encodes cursor bytes
// into an opaque string safe for a URL path segment.
func (c *Codec) Encode(ctx context.Context, plaintext []byte) string {
	data := plaintext
	if c.info.configured() {
		encrypted, err := c.client.Encrypt(ctx, c.info.KeyRing, c.info.Key, c.info.Location, c.info.Project, plaintext)
		if err != nil {
			logger.Warn("cursor: encrypt failed, falling back to absent cursor: %v", err)
			return ""
		}
		data = encrypted
	}
	return base64.URLEncoding.EncodeToString(data)
}

// Decode base64url-decodes and decrypts (if configured) an opaque
// cursor string. An empty string, or any failure, returns (nil, true) —
// "absent cursor", never an error.
func (c *Codec) Decode(ctx context.Context, opaque string) ([]byte, bool) {
	if opaque == "" {
		return nil, true
	}

	raw, err := base64.URLEncoding.DecodeString(opaque)
	if err != nil {
		logger.Warn("cursor: base64 decode failed, treating cursor as absent: %v", err)
		return nil, true
	}

	if !c.info.configured() {
		return raw, false
	}

	plaintext, err := c.client.Decrypt(ctx, c.info.KeyRing, c.info.Key, c.info.Location, c.info.Project, raw)
	if err != nil {
		logger.Warn("cursor: decrypt failed, treating cursor as absent: %v", err)
		return nil, true
	}
	return plaintext, false
}
