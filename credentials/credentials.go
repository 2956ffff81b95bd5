// Package credentials exchanges a verified identity token for short-lived
// AWS credentials through a Cognito identity pool, caching them with expiry
// awareness and coalescing concurrent exchanges.
package credentials

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/cognimosyne/mediatranslator/storage"
)

// Storage keys in the login-scoped store.
const (
	// CacheStorageKey holds the cached credential as one JSON blob.
	CacheStorageKey = "aws-temporary-credentials"

	// lastTokenKey holds the fingerprint of the identity token that minted
	// the cached credential, so an identity switch forces a fresh exchange.
	lastTokenKey = "aws-sts-last-token"
)

// Credentials is a temporary AWS credential set minted from an identity
// token. A nil Expiration means the provider did not report one and the
// credential is treated as valid indefinitely.
type Credentials struct {
	AccessKeyID     string     `json:"access_key_id"`
	SecretAccessKey string     `json:"secret_access_key"`
	SessionToken    string     `json:"session_token"`
	Expiration      *time.Time `json:"-"`
	IdentityID      *string    `json:"identity_id"`
}

type credentialsJSON struct {
	AccessKeyID     string  `json:"access_key_id"`
	SecretAccessKey string  `json:"secret_access_key"`
	SessionToken    string  `json:"session_token"`
	Expiration      *string `json:"expiration"`
	IdentityID      *string `json:"identity_id"`
}

// Persist writes the credential to the scoped store as a single JSON blob,
// serializing the expiration as RFC 3339. A nil value removes the entry.
func Persist(store storage.Store, creds *Credentials) {
	if creds == nil {
		store.TryDelete(CacheStorageKey)
		return
	}

	payload := credentialsJSON{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		IdentityID:      creds.IdentityID,
	}
	if creds.Expiration != nil {
		s := creds.Expiration.UTC().Format(time.RFC3339)
		payload.Expiration = &s
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	store.TrySet(CacheStorageKey, string(b))
}

// Load reads a previously persisted credential. Any storage or decoding
// failure reads as a miss.
func Load(store storage.Store) (Credentials, bool) {
	raw, ok := store.TryGet(CacheStorageKey)
	if !ok {
		return Credentials{}, false
	}

	var payload credentialsJSON
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Credentials{}, false
	}

	creds := Credentials{
		AccessKeyID:     payload.AccessKeyID,
		SecretAccessKey: payload.SecretAccessKey,
		SessionToken:    payload.SessionToken,
		IdentityID:      payload.IdentityID,
	}
	if payload.Expiration != nil {
		exp, err := time.Parse(time.RFC3339, *payload.Expiration)
		if err != nil {
			return Credentials{}, false
		}
		creds.Expiration = &exp
	}
	return creds, true
}

// Fingerprint returns a stable non-reversible digest of an identity token,
// used as the single-flight and identity-switch key.
func Fingerprint(identityToken string) string {
	sum := sha256.Sum256([]byte(identityToken))
	return hex.EncodeToString(sum[:])
}
