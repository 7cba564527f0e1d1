package report

import (
	"context"
	"encoding/json"
	"time"

	domain "chama-ledger/internal/domain/loan"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache holds serialized summaries. Implemented by cache.ByteCache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

type SummaryInput struct {
	MemberID string
	From     time.Time // zero means unbounded
	To       time.Time // exclusive; zero means unbounded
}

func (in SummaryInput) key() string {
	day := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02")
	}
	return in.MemberID + "|" + day(in.From) + "|" + day(in.To)
}

type Usecase struct {
	repo  domain.Repository
	cache Cache
	log   *zap.Logger
	group singleflight.Group
}

// NewUsecase: cache may be nil, in which case every call reads the store.
func NewUsecase(repo domain.Repository, cache Cache, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, cache: cache, log: log}
}

// Summary folds the matching loans. Results may be served from a short-lived
// cache and identical concurrent calls share one store read.
func (u *Usecase) Summary(ctx context.Context, in SummaryInput) (*domain.Summary, error) {
	if !in.From.IsZero() && !in.To.IsZero() && !in.From.Before(in.To) {
		return nil, domain.Wrap("aggregate", "", domain.ErrInvalidArgument)
	}
	key := in.key()

	if u.cache != nil {
		if b, ok, err := u.cache.Get(ctx, key); err != nil {
			u.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			var s domain.Summary
			if err := json.Unmarshal(b, &s); err == nil {
				return &s, nil
			}
		}
	}

	// The shared read outlives any one caller; each caller still stops
	// waiting when its own ctx ends.
	flight := u.group.DoChan(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		loans, err := u.repo.List(ctx, in.MemberID)
		if err != nil {
			return nil, err
		}
		s := domain.Aggregate(loans, domain.Filter{MemberID: in.MemberID, From: in.From, To: in.To})
		if u.cache != nil {
			if b, err := json.Marshal(s); err == nil {
				if err := u.cache.Set(ctx, key, b); err != nil {
					u.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
		return &s, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Summary), nil
	}
}
