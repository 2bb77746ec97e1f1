package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// OccupancyView answers "which seats are taken" for seat maps.  It is
// advisory: claiming never consults it.  Sold-only answers are cached
// in Redis and dropped after each settlement; views that include live
// claims always hit the store since claims come and go within minutes.
type OccupancyView struct {
	showtimes ShowtimeStore
	bookings  BookingStore
	cache     *redis.Client
	ttl       time.Duration
	log       *logger.Logger
}

// NewOccupancyView accepts a nil cache.
func NewOccupancyView(showtimes ShowtimeStore, bookings BookingStore, cache *redis.Client, ttl time.Duration, log *logger.Logger) *OccupancyView {
	if log == nil {
		log = logger.GetDefault()
	}
	return &OccupancyView{showtimes: showtimes, bookings: bookings, cache: cache, ttl: ttl, log: log}
}

func occupancyKey(showtimeID uint64) string {
	return fmt.Sprintf("occupied:%d", showtimeID)
}

// OccupiedSeats lists taken seats in canonical order.
func (v *OccupancyView) OccupiedSeats(ctx context.Context, showtimeID uint64, includeHeld bool) ([]string, error) {
	if _, err := v.showtimes.GetShowtime(ctx, showtimeID); err != nil {
		return nil, err
	}
	if includeHeld || v.cache == nil {
		return v.load(ctx, showtimeID, includeHeld)
	}

	key := occupancyKey(showtimeID)
	raw, err := v.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		var seats []string
		if jerr := json.Unmarshal([]byte(raw), &seats); jerr == nil {
			return seats, nil
		}
	case !errors.Is(err, redis.Nil):
		v.log.Warn("occupancy cache read failed", "key", key, "error", err)
	}

	seats, err := v.load(ctx, showtimeID, false)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(seats); jerr == nil {
		if serr := v.cache.SetEx(ctx, key, string(payload), v.ttl).Err(); serr != nil {
			v.log.Warn("occupancy cache write failed", "key", key, "error", serr)
		}
	}
	return seats, nil
}

func (v *OccupancyView) load(ctx context.Context, showtimeID uint64, includeHeld bool) ([]string, error) {
	seats, err := v.bookings.OccupiedSeats(ctx, showtimeID, includeHeld)
	if err != nil {
		return nil, err
	}
	if seats == nil {
		seats = []string{}
	}
	model.SortSeats(seats)
	return seats, nil
}

// Invalidate drops the cached sold view of a showtime.
func (v *OccupancyView) Invalidate(ctx context.Context, showtimeID uint64) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Del(ctx, occupancyKey(showtimeID)).Err(); err != nil {
		v.log.Warn("occupancy cache invalidate failed", "showtime_id", showtimeID, "error", err)
	}
}
