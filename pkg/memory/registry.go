package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Handle pairs one user's profile with one session's conversation.
// Handles returned by the same Registry key share state, and cached handles
// for the same user share one Profile.
type Handle struct {
	Key          string
	UserID       string
	SessionID    string
	Profile      *Profile
	Conversation *Conversation
}

// RegistryConfig bounds the registry cache.
type RegistryConfig struct {
	// Size caps the number of live handles. Zero means unbounded.
	Size int

	// TTL evicts handles idle for longer than this. Zero disables expiry.
	TTL time.Duration
}

// Registry caches handles per user and session. A miss, including one
// caused by eviction, reloads the handle from storage.
type Registry struct {
	profiles      *ProfileStore
	conversations *ConversationLog
	logger        *slog.Logger
	now           func() time.Time

	// mu makes the get-or-load sequence atomic so one key yields one handle.
	mu    sync.Mutex
	cache *expirable.LRU[string, *Handle]

	// live holds the profile shared by every cached handle of a user. It is
	// dropped when the user's last handle leaves the cache.
	liveMu sync.Mutex
	live   map[string]*sharedProfile
}

type sharedProfile struct {
	profile *Profile
	refs    int
}

// NewRegistry returns a Registry loading through the given stores.
func NewRegistry(profiles *ProfileStore, conversations *ConversationLog, cfg RegistryConfig, logger *slog.Logger) *Registry {
	r := &Registry{
		profiles:      profiles,
		conversations: conversations,
		logger:        logger,
		now:           time.Now,
		live:          make(map[string]*sharedProfile),
	}
	r.cache = expirable.NewLRU(cfg.Size, func(key string, h *Handle) {
		r.logger.Debug("memory handle evicted", "key", key)
		r.releaseProfile(h.UserID)
	}, cfg.TTL)
	return r
}

// Get returns the cached handle for the user and session, loading it on
// first access. An empty sessionID uses the "default" key and a date-derived
// conversation id.
func (r *Registry) Get(ctx context.Context, userID, sessionID string) *Handle {
	key := RegistryKey(userID, sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.cache.Get(key); ok {
		// re-adding restarts the idle timer
		r.cache.Add(key, h)
		return h
	}

	h := r.open(ctx, userID, sessionID, r.acquireProfile(ctx, userID))
	r.cache.Add(key, h)
	return h
}

// Open loads a fresh handle straight from storage without touching the
// cache. Read-only views use it to see persisted state.
func (r *Registry) Open(ctx context.Context, userID, sessionID string) *Handle {
	return r.open(ctx, userID, sessionID, r.profiles.Load(ctx, userID))
}

func (r *Registry) open(ctx context.Context, userID, sessionID string, profile *Profile) *Handle {
	convID := sessionID
	if convID == "" {
		convID = DefaultSessionID(userID, r.now())
	}

	return &Handle{
		Key:          RegistryKey(userID, sessionID),
		UserID:       userID,
		SessionID:    convID,
		Profile:      profile,
		Conversation: r.conversations.Load(ctx, convID),
	}
}

// acquireProfile returns the user's shared profile, loading it when no
// cached handle holds it yet.
func (r *Registry) acquireProfile(ctx context.Context, userID string) *Profile {
	r.liveMu.Lock()
	defer r.liveMu.Unlock()

	if sp, ok := r.live[userID]; ok {
		sp.refs++
		return sp.profile
	}
	p := r.profiles.Load(ctx, userID)
	r.live[userID] = &sharedProfile{profile: p, refs: 1}
	return p
}

// releaseProfile runs from the eviction callback and must not touch the
// cache.
func (r *Registry) releaseProfile(userID string) {
	r.liveMu.Lock()
	defer r.liveMu.Unlock()

	sp, ok := r.live[userID]
	if !ok {
		return
	}
	sp.refs--
	if sp.refs <= 0 {
		delete(r.live, userID)
	}
}

// Forget drops a cached handle so the next Get reloads it.
func (r *Registry) Forget(userID, sessionID string) {
	r.cache.Remove(RegistryKey(userID, sessionID))
}

// Len returns the number of cached handles.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Conversations returns the conversation loader.
func (r *Registry) Conversations() *ConversationLog {
	return r.conversations
}
