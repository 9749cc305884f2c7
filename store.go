package authclient

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const identityCacheKey = "current_user"

var _ IdentityStore = &MemoryStore{}
var _ IdentityStore = &CacheStore{}

// MemoryStore is a process-local IdentityStore. It backs tests and embedders
// that do not want the identity to outlive the process.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeIdentity(s.blob)
}

func (s *MemoryStore) Save(ctx context.Context, user *User) error {
	blob, err := encodeIdentity(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

type cacheEntry struct {
	bun.BaseModel `bun:"table:session_cache,alias:sc"`
	Key           string    `bun:"key,pk"`
	Value         []byte    `bun:"value,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// CacheStore persists the serialized identity in a local SQLite key-value
// table so a restart can present a best-effort identity before the first
// status round trip resolves. The cached record is a hint, never an
// authority.
type CacheStore struct {
	db *bun.DB
}

// OpenCacheStore opens (creating if needed) the cache database at path. Use
// "file::memory:?cache=shared" for an ephemeral cache.
func OpenCacheStore(ctx context.Context, path string) (*CacheStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not open session cache")
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	store := &CacheStore{db: db}
	if err := store.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewCacheStore wraps an existing bun handle; the caller owns the handle.
func NewCacheStore(ctx context.Context, db *bun.DB) (*CacheStore, error) {
	store := &CacheStore{db: db}
	if err := store.init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *CacheStore) init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*cacheEntry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not initialize session cache")
	}
	return nil
}

func (s *CacheStore) Load(ctx context.Context) (*User, error) {
	entry := &cacheEntry{}
	err := s.db.NewSelect().
		Model(entry).
		Where("key = ?", identityCacheKey).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not read session cache")
	}
	return decodeIdentity(entry.Value)
}

func (s *CacheStore) Save(ctx context.Context, user *User) error {
	blob, err := encodeIdentity(user)
	if err != nil {
		return err
	}
	entry := &cacheEntry{
		Key:       identityCacheKey,
		Value:     blob,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not write session cache")
	}
	return nil
}

func (s *CacheStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*cacheEntry)(nil)).
		Where("key = ?", identityCacheKey).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not clear session cache")
	}
	return nil
}

func (s *CacheStore) Close() error {
	return s.db.Close()
}

func encodeIdentity(user *User) ([]byte, error) {
	if user == nil {
		return nil, nil
	}
	blob, err := json.Marshal(user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not serialize identity")
	}
	return blob, nil
}

func decodeIdentity(blob []byte) (*User, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	user := &User{}
	if err := json.Unmarshal(blob, user); err != nil {
		// a corrupt cache is treated as absent, not fatal
		return nil, nil
	}
	return user, nil
}
