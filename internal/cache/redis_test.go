package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_AreasRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute, 30*time.Second)
	ctx := context.Background()

	areas := []domain.Area{{ID: 1, Name: "Piscina", Capacity: 20, HourlyCost: 15}}
	payload, err := json.Marshal(areas)
	require.NoError(t, err)

	mock.ExpectSet("cache:areas", payload, time.Minute).SetVal("OK")
	mock.ExpectGet("cache:areas").SetVal(string(payload))

	require.NoError(t, c.SetAreas(ctx, areas))
	got, err := c.GetAreas(ctx)

	require.NoError(t, err)
	assert.Equal(t, areas, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute, time.Minute)

	mock.ExpectGet("cache:reservations:calendar").RedisNil()

	got, err := c.GetCalendar(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_CalendarSetAndInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute, 30*time.Second)
	ctx := context.Background()

	reservations := []domain.Reservation{{ID: 4, AreaID: 1, UserID: "u1", State: domain.LifecyclePending}}
	payload, err := json.Marshal(reservations)
	require.NoError(t, err)

	mock.ExpectSet("cache:reservations:calendar", payload, 30*time.Second).SetVal("OK")
	mock.ExpectDel("cache:reservations:calendar").SetVal(1)

	require.NoError(t, c.SetCalendar(ctx, reservations))
	require.NoError(t, c.InvalidateCalendar(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_CorruptPayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute, time.Minute)

	mock.ExpectGet("cache:areas").SetVal("{not json")

	_, err := c.GetAreas(context.Background())
	assert.Error(t, err)
}
