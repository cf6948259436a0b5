package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"jobpilot-admin/internal/shared/constants"
)

const (
	nonceSize    = 24
	sealedPrefix = "sb1:"
)

var ErrUnsealFailed = errors.New("could not unseal session value")

// Sealer encrypts upstream tokens before they reach a Storage
type Sealer struct {
	key [32]byte
}

// NewSealer derives a secretbox key from an arbitrary secret
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, fmt.Errorf("seal key cannot be empty")
	}
	return &Sealer{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal encrypts plaintext with a random nonce
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return "", ErrUnsealFailed
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrUnsealFailed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealFailed
	}
	return string(plain), nil
}

type sealedStorage struct {
	inner  Storage
	sealer *Sealer
}

var sealedFields = map[string]bool{
	constants.SESSION_FIELD_ACCESS_TOKEN:  true,
	constants.SESSION_FIELD_REFRESH_TOKEN: true,
}

// NewSealedStorage wraps a Storage so token fields are encrypted at rest.
// A token that fails to open is dropped, which leaves the session
// unauthenticated on restore.
func NewSealedStorage(inner Storage, sealer *Sealer) Storage {
	return &sealedStorage{inner: inner, sealer: sealer}
}

func (s *sealedStorage) Load(ctx context.Context, sessionID string) (Record, error) {
	rec, err := s.inner.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for field := range sealedFields {
		v, ok := rec[field]
		if !ok {
			continue
		}
		plain, err := s.sealer.Open(v)
		if err != nil {
			delete(rec, field)
			continue
		}
		rec[field] = plain
	}
	return rec, nil
}

func (s *sealedStorage) Save(ctx context.Context, sessionID string, rec Record) error {
	out := copyRecord(rec)
	for field := range sealedFields {
		v, ok := out[field]
		if !ok || v == "" {
			continue
		}
		sealed, err := s.sealer.Seal(v)
		if err != nil {
			return err
		}
		out[field] = sealed
	}
	return s.inner.Save(ctx, sessionID, out)
}

func (s *sealedStorage) Clear(ctx context.Context, sessionID string) error {
	return s.inner.Clear(ctx, sessionID)
}
