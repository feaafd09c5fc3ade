package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/use-agent/harvest/models"
)

const maxTxRetries = 16

// Redis stores each session as a JSON string and indexes ids in a sorted
// set scored by creation time. Mutations run as WATCH/MULTI transactions
// retried on conflict.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisConfig selects the server and key namespace.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: ping Redis: %w", err)
	}
	slog.Info("connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return newRedisWithClient(client, cfg.KeyPrefix), nil
}

func newRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "harvest"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) key(id string) string { return r.prefix + ":session:" + id }
func (r *Redis) index() string        { return r.prefix + ":sessions" }
func (r *Redis) scrapeKey(id string) string {
	return r.prefix + ":scrape:" + id
}

func (r *Redis) Insert(ctx context.Context, s *models.Session) error {
	b, err := json.Marshal(snapshot(s))
	if err != nil {
		return fmt.Errorf("store: encode session: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(s.SessionID), b, 0)
		pipe.ZAdd(ctx, r.index(), redis.Z{Score: float64(s.CreatedAt.UnixNano()), Member: s.SessionID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: insert session: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*models.Session, error) {
	return r.load(ctx, r.client, id)
}

func (r *Redis) AppendPage(ctx context.Context, id string, p models.Page, now time.Time) error {
	_, err := r.update(ctx, id, func(s *models.Session) (bool, error) {
		if s.Status != models.SessionActive {
			return false, ErrNotActive
		}
		s.Pages = append(s.Pages, p)
		s.TotalPages = len(s.Pages)
		s.UpdatedAt = now
		return true, nil
	})
	return err
}

func (r *Redis) RemovePage(ctx context.Context, id, pageID string, now time.Time) error {
	_, err := r.update(ctx, id, func(s *models.Session) (bool, error) {
		if !removePage(s, pageID, now) {
			return false, ErrPageNotFound
		}
		return true, nil
	})
	return err
}

func (r *Redis) Advance(ctx context.Context, id string, status models.SessionStatus, now time.Time) (*models.Session, error) {
	return r.update(ctx, id, func(s *models.Session) (bool, error) {
		return advance(s, status, now), nil
	})
}

func (r *Redis) List(ctx context.Context, f ListFilter) ([]models.SessionLite, error) {
	ids, err := r.client.ZRevRange(ctx, r.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list session ids: %w", err)
	}
	out := make([]models.SessionLite, 0)
	const page = 100
	for start := 0; start < len(ids); start += page {
		end := min(start+page, len(ids))
		keys := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, r.key(id))
		}
		vals, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("store: load sessions: %w", err)
		}
		for _, v := range vals {
			raw, ok := v.(string)
			if !ok {
				continue
			}
			var s models.Session
			if err := json.Unmarshal([]byte(raw), &s); err != nil {
				return nil, fmt.Errorf("store: decode session: %w", err)
			}
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			out = append(out, s.Lite())
			if f.Limit > 0 && len(out) >= f.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (r *Redis) InsertScrape(ctx context.Context, rec *models.ScrapeRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode scrape: %w", err)
	}
	if err := r.client.Set(ctx, r.scrapeKey(rec.ScrapeID), b, 0).Err(); err != nil {
		return fmt.Errorf("store: insert scrape: %w", err)
	}
	return nil
}

func (r *Redis) GetScrape(ctx context.Context, id string) (*models.ScrapeRecord, error) {
	raw, err := r.client.Get(ctx, r.scrapeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrScrapeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get scrape: %w", err)
	}
	var rec models.ScrapeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("store: decode scrape: %w", err)
	}
	return &rec, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close(context.Context) error {
	return r.client.Close()
}

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) load(ctx context.Context, c cmdable, id string) (*models.Session, error) {
	raw, err := c.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("store: decode session: %w", err)
	}
	if s.Pages == nil {
		s.Pages = []models.Page{}
	}
	return &s, nil
}

// update runs mutate inside an optimistic transaction on the session key.
// mutate reports whether it changed the session; unchanged sessions are
// not written back.
func (r *Redis) update(ctx context.Context, id string, mutate func(*models.Session) (bool, error)) (*models.Session, error) {
	key := r.key(id)
	var result *models.Session

	txf := func(tx *redis.Tx) error {
		s, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		changed, err := mutate(s)
		if err != nil {
			return err
		}
		result = s
		if !changed {
			return nil
		}
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("store: encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPageNotFound) || errors.Is(err, ErrNotActive) {
			return nil, err
		}
		return nil, fmt.Errorf("store: update session: %w", err)
	}
	return nil, ErrConflict
}
