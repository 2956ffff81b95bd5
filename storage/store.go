// Package storage provides the key-value stores the session and credential
// layers cache into. Stores follow a try-contract: operations never return
// errors, a failed read is indistinguishable from a missing key and a failed
// write is silently dropped. Callers treat every failure as a cache miss.
package storage

// Store is a capability-scoped string key-value store.
//
// Two scopes exist in practice: a login-scoped store that is wiped on
// sign-out (the credential cache, the pending redirect marker) and a durable
// store that survives it (the language preference).
type Store interface {
	// TryGet returns the value for key and whether it was present.
	TryGet(key string) (string, bool)

	// TrySet stores value under key, dropping the write on failure.
	TrySet(key, value string)

	// TryDelete removes key if present.
	TryDelete(key string)
}
