package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Yash3561/Nexus/pkg/storage"
)

// recentFacts is how many trailing facts RenderContext includes.
const recentFacts = 5

// ProfileRecord is the persisted shape of a user profile.
type ProfileRecord struct {
	UserID      string            `json:"user_id"`
	Name        *string           `json:"name"`
	Preferences map[string]string `json:"preferences"`
	Facts       []string          `json:"facts"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at,omitzero"`
}

// Profile is the live, shared view of one user's record. It is safe for
// concurrent use; every mutator persists the whole record before returning.
type Profile struct {
	mu     sync.Mutex
	store  storage.Driver
	logger *slog.Logger
	rec    ProfileRecord
}

// ProfileStore loads profiles from a storage driver.
type ProfileStore struct {
	store  storage.Driver
	logger *slog.Logger
	now    func() time.Time
}

// NewProfileStore returns a ProfileStore backed by store.
func NewProfileStore(store storage.Driver, logger *slog.Logger) *ProfileStore {
	return &ProfileStore{store: store, logger: logger, now: time.Now}
}

// Load returns the profile for userID. An absent record, a read error or an
// undecodable record all yield a fresh default profile; errors are logged
// and never returned.
func (s *ProfileStore) Load(ctx context.Context, userID string) *Profile {
	p := &Profile{
		store:  s.store,
		logger: s.logger,
		rec: ProfileRecord{
			UserID:      userID,
			Preferences: map[string]string{},
			Facts:       []string{},
			CreatedAt:   s.now().UTC(),
		},
	}

	body, err := s.store.Get(ctx, storage.KindUser, userID)
	if err != nil {
		if !storage.IsNotFound(err) {
			s.logger.Warn("profile read failed, starting fresh", "user_id", userID, "error", err)
		}
		return p
	}

	var rec ProfileRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		s.logger.Warn("profile record corrupt, starting fresh", "user_id", userID, "error", err)
		return p
	}

	rec.UserID = userID
	if rec.Preferences == nil {
		rec.Preferences = map[string]string{}
	}
	if rec.Facts == nil {
		rec.Facts = []string{}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = p.rec.CreatedAt
	}
	p.rec = rec
	return p
}

// UserID returns the profile's id.
func (p *Profile) UserID() string {
	return p.rec.UserID
}

// Name returns the user's name, or "" when unknown.
func (p *Profile) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rec.Name == nil {
		return ""
	}
	return *p.rec.Name
}

// Facts returns a copy of the facts in insertion order.
func (p *Profile) Facts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.rec.Facts)
}

// Preferences returns a copy of the preferences.
func (p *Profile) Preferences() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]string, len(p.rec.Preferences))
	for k, v := range p.rec.Preferences {
		out[k] = v
	}
	return out
}

// Record returns a deep copy of the persisted shape.
func (p *Profile) Record() ProfileRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec := p.rec
	if p.rec.Name != nil {
		name := *p.rec.Name
		rec.Name = &name
	}
	rec.Facts = slices.Clone(p.rec.Facts)
	rec.Preferences = make(map[string]string, len(p.rec.Preferences))
	for k, v := range p.rec.Preferences {
		rec.Preferences[k] = v
	}
	return rec
}

// SetName records the user's name.
func (p *Profile) SetName(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rec.Name = &name
	return p.persist(ctx)
}

// AddPreference sets a preference, replacing any previous value for key.
func (p *Profile) AddPreference(ctx context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rec.Preferences[key] = value
	return p.persist(ctx)
}

// AddFact appends fact unless an identical string is already known.
func (p *Profile) AddFact(ctx context.Context, fact string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Contains(p.rec.Facts, fact) {
		return nil
	}
	p.rec.Facts = append(p.rec.Facts, fact)
	return p.persist(ctx)
}

// RenderContext summarizes the profile for a prompt: a name line, the last
// five facts and the preferences, each omitted when empty. Returns "" when
// nothing is known.
func (p *Profile) RenderContext() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var parts []string

	if p.rec.Name != nil && *p.rec.Name != "" {
		parts = append(parts, "User's name: "+*p.rec.Name)
	}

	if n := len(p.rec.Facts); n > 0 {
		facts := p.rec.Facts[max(0, n-recentFacts):]
		parts = append(parts, "Known about user: "+strings.Join(facts, "; "))
	}

	if len(p.rec.Preferences) > 0 {
		keys := make([]string, 0, len(p.rec.Preferences))
		for k := range p.rec.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		prefs := make([]string, 0, len(keys))
		for _, k := range keys {
			prefs = append(prefs, k+": "+p.rec.Preferences[k])
		}
		parts = append(parts, "Preferences: "+strings.Join(prefs, ", "))
	}

	return strings.Join(parts, "\n")
}

// persist writes the whole record. Callers hold p.mu.
func (p *Profile) persist(ctx context.Context) error {
	p.rec.UpdatedAt = time.Now().UTC()

	body, err := json.MarshalIndent(p.rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := p.store.Put(ctx, storage.KindUser, p.rec.UserID, body); err != nil {
		return fmt.Errorf("persisting profile %s: %w", p.rec.UserID, err)
	}
	return nil
}
