package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/amenitybooking/config"
	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      redis.Cmdable
	areasTTL    time.Duration
	calendarTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl config.CacheConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewRedisCacheWithClient(client, ttl.AreasTTL(), ttl.CalendarTTL())
}

func NewRedisCacheWithClient(client redis.Cmdable, areasTTL, calendarTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, areasTTL: areasTTL, calendarTTL: calendarTTL}
}

// GetAreas returns nil, nil on a miss.
func (c *RedisCache) GetAreas(ctx context.Context) ([]domain.Area, error) {
	var areas []domain.Area
	ok, err := c.get(ctx, areasKey(), &areas)
	if err != nil || !ok {
		return nil, err
	}
	return areas, nil
}

func (c *RedisCache) SetAreas(ctx context.Context, areas []domain.Area) error {
	return c.set(ctx, areasKey(), areas, c.areasTTL)
}

// GetCalendar returns nil, nil on a miss.
func (c *RedisCache) GetCalendar(ctx context.Context) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	ok, err := c.get(ctx, calendarKey(), &reservations)
	if err != nil || !ok {
		return nil, err
	}
	return reservations, nil
}

func (c *RedisCache) SetCalendar(ctx context.Context, reservations []domain.Reservation) error {
	return c.set(ctx, calendarKey(), reservations, c.calendarTTL)
}

func (c *RedisCache) InvalidateCalendar(ctx context.Context) error {
	return c.client.Del(ctx, calendarKey()).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func areasKey() string {
	return "cache:areas"
}

func calendarKey() string {
	return "cache:reservations:calendar"
}
