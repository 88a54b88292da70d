// Package checklist implements the backend-agnostic checklist store.
// A Store owns one named checklist and routes every operation to either
// the local durable key-value store or the remote checklist API,
// depending on the checklist's configured mode, while tracking whether
// local mutations are still awaiting remote confirmation.
package checklist

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/api"
	"github.com/nhle/checklist-sync/internal/kvstore"
	"github.com/nhle/checklist-sync/internal/model"
	"github.com/nhle/checklist-sync/internal/slug"
)

// Options configures a Store. Dependencies are injected explicitly;
// there is no implicit per-checklist registry.
type Options struct {
	// Mode selects the authoritative backend.
	Mode model.Mode

	// KV is the durable local store. Required for ModeLocal.
	KV kvstore.Store

	// Client is the remote API client. Required for ModeAPI.
	Client *api.Client

	// EnableOfflineSync gates whether unconfirmed api-mode mutations
	// are applied optimistically and flagged for a later sync pass.
	EnableOfflineSync bool

	// RetryAttempts bounds the SyncPendingChanges retry loop.
	// Defaults to 3.
	RetryAttempts int

	// SyncBaseDelay is the initial backoff delay between sync attempts,
	// doubling each attempt. Defaults to one second.
	SyncBaseDelay time.Duration

	Logger *zap.Logger

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Store manages a single named checklist.
//
// Store performs read-modify-write cycles on full records without
// locking or versioning; two concurrent mutators of the same checklist
// can clobber each other's writes. Callers are expected to await
// operations sequentially.
type Store struct {
	name string
	slg  string

	kv      kvstore.Store
	client  *api.Client
	offline bool
	retries int
	delay   time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	mode    model.Mode
	pending bool
	cached  *model.Checklist
}

// New creates a Store for the checklist with the given display name.
// The slug is derived immediately; a name that normalizes to an empty
// slug fails with InvalidNameError.
func New(name string, opts Options) (*Store, error) {
	slg := slug.Make(name)
	if slg == "" {
		return nil, &InvalidNameError{Name: name}
	}
	if !opts.Mode.Valid() {
		return nil, &OpError{Op: "new", Err: errInvalidMode(opts.Mode)}
	}
	if opts.Mode == model.ModeLocal && opts.KV == nil {
		return nil, &OpError{Op: "new", Err: errMissingBackend("local mode requires a key-value store")}
	}
	if opts.Mode == model.ModeAPI && opts.Client == nil {
		return nil, &OpError{Op: "new", Err: errMissingBackend("api mode requires an API client")}
	}

	s := &Store{
		name:    strings.TrimSpace(name),
		slg:     slg,
		mode:    opts.Mode,
		kv:      opts.KV,
		client:  opts.Client,
		offline: opts.EnableOfflineSync,
		retries: opts.RetryAttempts,
		delay:   opts.SyncBaseDelay,
		logger:  opts.Logger,
		now:     opts.Clock,
	}
	if s.retries <= 0 {
		s.retries = 3
	}
	if s.delay <= 0 {
		s.delay = time.Second
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Name returns the checklist's current display name.
func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Slug returns the derived identity/routing key. It never changes,
// even after a rename.
func (s *Store) Slug() string { return s.slg }

// Mode returns the currently configured backend mode.
func (s *Store) Mode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Get fetches the current checklist. A checklist that does not exist
// yet yields (nil, nil); absence is an expected outcome, not a failure.
func (s *Store) Get(ctx context.Context) (*model.Checklist, error) {
	var (
		c   *model.Checklist
		err error
	)
	if s.Mode() == model.ModeLocal {
		c, err = s.localGet(ctx)
	} else {
		c, err = s.remoteGet(ctx)
	}
	if err != nil {
		return nil, classify("get", err)
	}
	if c != nil {
		s.setCached(c)
	}
	return c, nil
}

// CreateOrGet ensures the checklist exists: it returns the existing
// record when present and creates it otherwise. Creation is idempotent;
// a concurrent create surfacing as a conflict falls back to a
// cache-defeating fetch of the existing record.
func (s *Store) CreateOrGet(ctx context.Context) (*model.Checklist, error) {
	existing, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var c *model.Checklist
	if s.Mode() == model.ModeLocal {
		c, err = s.localCreate(ctx)
	} else {
		c, err = s.remoteCreate(ctx)
	}
	if err != nil {
		return nil, classify("create", err)
	}
	s.setCached(c)
	return c, nil
}

// Save persists the full checklist record, writing through to the
// active backend. A successful save confirms the remote state and
// clears the pending-sync flag.
func (s *Store) Save(ctx context.Context, c *model.Checklist) error {
	c.UpdatedAt = s.now().UTC()

	var err error
	if s.Mode() == model.ModeLocal {
		err = s.localSave(ctx, c)
	} else {
		err = s.client.PutChecklist(ctx, c)
	}
	if err != nil {
		return classify("save", err)
	}

	s.setCached(c)
	s.setPending(false)
	return nil
}

// Delete removes the checklist and, with it, all items. Terminal.
func (s *Store) Delete(ctx context.Context) error {
	var err error
	if s.Mode() == model.ModeLocal {
		err = s.kv.Remove(ctx, model.StorageKey(s.slg))
	} else {
		err = s.client.DeleteChecklist(ctx, s.slg)
	}
	if err != nil {
		return classify("delete", err)
	}

	s.mu.Lock()
	s.cached = nil
	s.pending = false
	s.mu.Unlock()
	return nil
}

// AddItem appends a new item with the trimmed title to the end of the
// ordered item sequence. Titles that are empty after trimming are
// rejected. Local mode requires the checklist to already exist; api
// mode delegates the existence check to the server.
func (s *Store) AddItem(ctx context.Context, title string) (*model.ChecklistItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	var (
		item *model.ChecklistItem
		err  error
	)
	if s.Mode() == model.ModeLocal {
		item, err = s.localAddItem(ctx, title)
	} else {
		item, err = s.remoteAddItem(ctx, title)
	}
	if err != nil {
		return nil, classify("add item", err)
	}
	return item, nil
}

// ToggleItem flips the item's completed state.
func (s *Store) ToggleItem(ctx context.Context, itemID string) (*model.ChecklistItem, error) {
	var (
		item *model.ChecklistItem
		err  error
	)
	if s.Mode() == model.ModeLocal {
		item, err = s.localToggleItem(ctx, itemID)
	} else {
		item, err = s.remoteToggleItem(ctx, itemID)
	}
	if err != nil {
		return nil, classify("toggle item", err)
	}
	return item, nil
}

// UpdateItem renames an item in place.
func (s *Store) UpdateItem(ctx context.Context, itemID, newTitle string) (*model.ChecklistItem, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil, ErrEmptyTitle
	}

	var (
		item *model.ChecklistItem
		err  error
	)
	if s.Mode() == model.ModeLocal {
		item, err = s.localUpdateItem(ctx, itemID, newTitle)
	} else {
		item, err = s.remoteUpdateItem(ctx, itemID, newTitle)
	}
	if err != nil {
		return nil, classify("update item", err)
	}
	return item, nil
}

// DeleteItem removes an item from the checklist.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	var err error
	if s.Mode() == model.ModeLocal {
		err = s.localDeleteItem(ctx, itemID)
	} else {
		err = s.remoteDeleteItem(ctx, itemID)
	}
	if err != nil {
		return classify("delete item", err)
	}
	return nil
}

// DuplicateItem inserts a copy of the item, titled "<original> (Copy)",
// immediately after the original. The copy always starts incomplete,
// regardless of the original's state.
func (s *Store) DuplicateItem(ctx context.Context, itemID string) (*model.ChecklistItem, error) {
	var (
		item *model.ChecklistItem
		err  error
	)
	if s.Mode() == model.ModeLocal {
		item, err = s.localDuplicateItem(ctx, itemID)
	} else {
		item, err = s.remoteDuplicateItem(ctx, itemID)
	}
	if err != nil {
		return nil, classify("duplicate item", err)
	}
	return item, nil
}

// Patch selects which checklist fields to change.
type Patch struct {
	Name *string
	Mode *model.Mode
}

// Update patches the checklist's name and/or mode. Renaming does not
// change the slug.
func (s *Store) Update(ctx context.Context, patch Patch) (*model.Checklist, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &ChecklistNotFoundError{Slug: s.slg}
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if slug.Make(name) == "" {
			return nil, &InvalidNameError{Name: *patch.Name}
		}
		c.Name = name
		s.mu.Lock()
		s.name = name
		s.mu.Unlock()
	}
	if patch.Mode != nil {
		if !patch.Mode.Valid() {
			return nil, classify("update", errInvalidMode(*patch.Mode))
		}
		// The target backend must have been injected at construction,
		// or every later operation would hit a nil dependency.
		if *patch.Mode == model.ModeLocal && s.kv == nil {
			return nil, &OpError{Op: "update", Err: errMissingBackend("local mode requires a key-value store")}
		}
		if *patch.Mode == model.ModeAPI && s.client == nil {
			return nil, &OpError{Op: "update", Err: errMissingBackend("api mode requires an API client")}
		}
		c.Mode = *patch.Mode
	}

	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}

	if patch.Mode != nil {
		s.mu.Lock()
		s.mode = *patch.Mode
		s.mu.Unlock()
	}
	return c, nil
}

// apply runs fn against the checklist's item slice and stamps the
// record's UpdatedAt. Used by the local read-modify-write path and the
// optimistic offline path.
func (s *Store) apply(c *model.Checklist, fn func(c *model.Checklist) error) error {
	if err := fn(c); err != nil {
		return err
	}
	c.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) setCached(c *model.Checklist) {
	s.mu.Lock()
	s.cached = c
	s.mu.Unlock()
}

func (s *Store) getCached() *model.Checklist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached
}

func (s *Store) setPending(v bool) {
	s.mu.Lock()
	s.pending = v
	s.mu.Unlock()
}
