package cursor

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bitechdev/specgateway/pkg/common"
)

// NoopKMS passes cursor bytes through unencrypted. It is only reachable
// when KeyInfo is unconfigured, so Codec never actually invokes it — it
// exists so callers that want an explicit KMSClient value have one.
type NoopKMS struct{}

func (NoopKMS) Encrypt(_ context.Context, _, _, _, _ string, plaintext []byte) ([]byte, error) {
	return plaintext, nil
}

func (NoopKMS) Decrypt(_ context.Context, _, _, _, _ string, ciphertext []byte) ([]byte, error) {
	return ciphertext, nil
}

// LocalAEADKMS seals cursor bytes with a single locally-held
// ChaCha20-Poly1305 key, for deployments without a managed KMS. The
// key/location/project arguments are ignored; only keyRing is used, as
// a hex-encoded 32-byte key lookup.
type LocalAEADKMS struct {
	keys map[string][]byte
}

// NewLocalAEADKMS builds a LocalAEADKMS keyed by hex-encoded 32-byte
// keys, keyed by the keyRing identifier used at Encrypt/Decrypt time.
func NewLocalAEADKMS(keysByRing map[string]string) (*LocalAEADKMS, error) {
	keys := make(map[string][]byte, len(keysByRing))
	for ring, hexKey := range keysByRing {
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, common.ErrConfigIncomplete("cursor: invalid local KMS key for ring %q: %v", ring, err)
		}
		if len(raw) != chacha20poly1305.KeySize {
			return nil, common.ErrConfigIncomplete("cursor: local KMS key for ring %q must be %d bytes", ring, chacha20poly1305.KeySize)
		}
		keys[ring] = raw
	}
	return &LocalAEADKMS{keys: keys}, nil
}

func (k *LocalAEADKMS) aead(keyRing string) (chacha20poly1305.AEAD, error) {
	key, ok := k.keys[keyRing]
	if !ok {
		return nil, common.ErrConfigIncomplete("cursor: no local KMS key configured for ring %q", keyRing)
	}
	return chacha20poly1305.New(key)
}

func (k *LocalAEADKMS) Encrypt(_ context.Context, keyRing, _, _, _ string, plaintext []byte) ([]byte, error) {
	aead, err := k.aead(keyRing)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, common.ErrInternal(err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (k *LocalAEADKMS) Decrypt(_ context.Context, keyRing, _, _, _ string, ciphertext []byte) ([]byte, error) {
	aead, err := k.aead(keyRing)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, common.ErrBadCursor("cursor: ciphertext too short")
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrBadCursor("cursor: decrypt failed: %v", err)
	}
	return plaintext, nil
}
