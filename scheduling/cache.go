package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meddesk/appointment-api/models"
)

var cacheCtx = context.Background()

// DayCache keeps a doctor's day list in redis so the list endpoint does not hit
// the database on every poll. A nil cache (or nil client) disables caching.
// Every lifecycle transition invalidates the doctor's day, so staleness is
// bounded to the TTL only when redis and postgres disagree about a write we
// did not make.
type DayCache struct {
	client *redis.Client
}

func NewDayCache(client *redis.Client) *DayCache {
	return &DayCache{client: client}
}

func dayKey(doctorID uint, day time.Time) string {
	return fmt.Sprintf("doctor:%d:appointments:%s", doctorID, day.Format("2006-01-02"))
}

func (c *DayCache) Get(doctorID uint, day time.Time) ([]models.Appointment, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(cacheCtx, dayKey(doctorID, day)).Bytes()
	if err != nil {
		return nil, false
	}
	var appts []models.Appointment
	if err := json.Unmarshal(data, &appts); err != nil {
		return nil, false
	}
	return appts, true
}

func (c *DayCache) Put(doctorID uint, day time.Time, appts []models.Appointment, ttl time.Duration) {
	if c == nil || c.client == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(appts)
	if err != nil {
		return
	}
	if err := c.client.Set(cacheCtx, dayKey(doctorID, day), data, ttl).Err(); err != nil {
		log.Printf("cache: failed to store day list: %v", err)
	}
}

func (c *DayCache) Invalidate(doctorID uint, day time.Time) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(cacheCtx, dayKey(doctorID, day)).Err(); err != nil {
		log.Printf("cache: failed to invalidate day list: %v", err)
	}
}
