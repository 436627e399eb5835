package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/connectivity"
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/assessments"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/logging"
)

// Kinds understood by Binding.Save and Binding.Read.
const (
	KindAssessment  = "assessment"
	KindAssessments = "assessments"
	KindAnalytics   = "analytics"
	KindUserData    = "user_data"
	KindCache       = "cache"
)

var ErrMissingKey = errors.New(`payload needs a non-empty "key"`)

// BindingDeps is what a Binding is built from.
type BindingDeps struct {
	Store        *store.Store
	Repos        Repositories
	Connectivity connectivity.Source
	Scheduler    *Scheduler
	Logger       logging.Logger

	// ListLimit bounds Read of all assessments; <= 0 uses the facade default.
	ListLimit int
}

// Binding is the surface the rest of the application talks to. It picks the
// facade for each kind and queues a remote create for writes made offline.
type Binding struct {
	store     *store.Store
	repos     Repositories
	conn      connectivity.Source
	scheduler *Scheduler
	logger    logging.Logger
	listLimit int

	usage store.Usage
}

// NewBinding samples storage usage once. A failed sample leaves it at zero.
func NewBinding(ctx context.Context, deps BindingDeps) *Binding {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	limit := deps.ListLimit
	if limit <= 0 {
		limit = assessments.DefaultListLimit
	}

	b := &Binding{
		store:     deps.Store,
		repos:     deps.Repos,
		conn:      deps.Connectivity,
		scheduler: deps.Scheduler,
		logger:    logger,
		listLimit: limit,
	}

	usage, err := b.store.Usage(ctx)
	if err != nil {
		logger.Warn(ctx, "storage usage unavailable", "error", err)
	}
	b.usage = usage
	return b
}

func (b *Binding) IsOnline() bool {
	return b.conn.Online()
}

// WatchOnline streams connectivity transitions until cancel is called.
func (b *Binding) WatchOnline() (<-chan bool, func()) {
	return b.conn.Subscribe()
}

// StorageUsage is the value sampled when the binding was built.
func (b *Binding) StorageUsage() store.Usage {
	return b.usage
}

type keyValue struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func parseKeyValue(payload any) (keyValue, error) {
	raw, err := models.Payload(payload)
	if err != nil {
		return keyValue{}, err
	}
	var kv keyValue
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &kv); err != nil {
			return keyValue{}, fmt.Errorf("%w: %w", ErrMissingKey, err)
		}
	}
	if kv.Key == "" {
		return keyValue{}, ErrMissingKey
	}
	return kv, nil
}

// Save writes payload through the facade for kind. user_data and any
// unknown kind expect a {"key": ..., "value": ...} payload; unknown kinds
// land in the cache. When offline at call time a create on /api/<kind> is
// queued too.
func (b *Binding) Save(ctx context.Context, kind string, payload any) error {
	online := b.conn.Online()

	var err error
	switch kind {
	case KindAssessment:
		_, err = b.repos.Assessments.Save(ctx, payload)
	case KindAnalytics:
		_, err = b.repos.Analytics.Record(ctx, payload)
	case KindUserData:
		var kv keyValue
		if kv, err = parseKeyValue(payload); err == nil {
			err = b.repos.UserData.Save(ctx, kv.Key, kv.Value)
		}
	default:
		var kv keyValue
		if kv, err = parseKeyValue(payload); err == nil {
			err = b.repos.Cache.Put(ctx, kv.Key, kv.Value, "")
		}
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if online {
		return nil
	}
	if _, err := b.repos.Queue.Enqueue(ctx, models.ActionCreate, "/api/"+kind, payload); err != nil {
		return fmt.Errorf("queue %s: %w", kind, err)
	}
	b.logger.Debug(ctx, "offline write queued", "kind", kind)
	return nil
}

// Read returns what the facade for kind holds, or nil when there is nothing
// to return. Kinds that address one record need key.
func (b *Binding) Read(ctx context.Context, kind, key string) (any, error) {
	switch kind {
	case KindAssessments:
		return b.repos.Assessments.List(ctx, b.listLimit)
	case KindAssessment:
		if key == "" {
			return nil, nil
		}
		item, err := b.repos.Assessments.GetByID(ctx, key)
		if err != nil || item == nil {
			return nil, err
		}
		return item, nil
	case KindAnalytics:
		return b.repos.Analytics.ListAll(ctx)
	case KindUserData:
		if key == "" {
			return nil, nil
		}
		return rawOrNil(b.repos.UserData.Get(ctx, key))
	case KindCache:
		if key == "" {
			return nil, nil
		}
		return rawOrNil(b.repos.Cache.Get(ctx, key))
	default:
		return nil, nil
	}
}

func rawOrNil(raw json.RawMessage, err error) (any, error) {
	if err != nil || raw == nil {
		return nil, err
	}
	return raw, nil
}

func (b *Binding) SyncNow(ctx context.Context) (PassResult, error) {
	return b.scheduler.Sync(ctx)
}

// Reset wipes every collection, dead letters included.
func (b *Binding) Reset(ctx context.Context) error {
	if err := b.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	b.logger.Info(ctx, "local data cleared")
	return nil
}

func (b *Binding) EvictCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	return b.repos.Cache.EvictOlderThan(ctx, maxAge)
}

func (b *Binding) Pending(ctx context.Context) ([]models.QueueItem, error) {
	return b.repos.Queue.ListPending(ctx)
}

func (b *Binding) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	return b.repos.DeadLetters.List(ctx)
}
