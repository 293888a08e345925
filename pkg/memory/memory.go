// Package memory provides the per-user and per-session memory layer for
// nexus.
//
// A [Profile] is the durable record of what is known about a user: an
// optional name, free-text facts and preferences. A [Conversation] is the
// ordered message log of one session. Both persist their full record through
// a storage.Driver on every mutation, and both load fail-soft: a missing or
// corrupt record starts from defaults instead of failing the request.
//
// An [Extractor] distills facts from user messages into a Profile. The
// [Registry] caches one [Handle] (profile + conversation) per user and
// session so concurrent requests in the process observe the same state.
package memory

import "time"

// DefaultSessionKey is the registry key suffix used when no session id is
// given.
const DefaultSessionKey = "default"

// DefaultSessionID derives a session id from the user id and the local date,
// e.g. "ava_20261017".
func DefaultSessionID(userID string, now time.Time) string {
	return userID + "_" + now.Format("20060102")
}

// RegistryKey is the cache key for a user and optional session.
func RegistryKey(userID, sessionID string) string {
	if sessionID == "" {
		sessionID = DefaultSessionKey
	}
	return userID + ":" + sessionID
}
