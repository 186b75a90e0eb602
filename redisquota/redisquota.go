// Package redisquota keeps the per-license device counter in Redis. Each
// licenseId is one hash (count, limit, last_updated); every mutation is a Lua
// script so the capacity check and the write happen in one round-trip.
package redisquota

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"licensepanel/models"
	"licensepanel/services"
	"licensepanel/utils"
)

// DefaultKeyPrefix mirrors the license_devices_count collection name.
const DefaultKeyPrefix = "license_devices_count:"

const scanBatchSize = 100

var getOrCreateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	redis.call('HSET', KEYS[1], 'count', 0, 'limit', ARGV[1], 'last_updated', ARGV[2])
end
return redis.call('HMGET', KEYS[1], 'count', 'limit', 'last_updated')
`)

// 한도 검사와 증가를 한 스크립트에서 처리. 레코드가 없으면 nil.
// ARGV: last_updated, default limit (1 미만으로 저장된 한도에 적용)
var tryIncrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local count = tonumber(redis.call('HGET', KEYS[1], 'count')) or 0
local limit = tonumber(redis.call('HGET', KEYS[1], 'limit'))
if limit == nil or (limit ~= -1 and limit < 1) then
	limit = tonumber(ARGV[2])
end
local admitted = 0
if limit == -1 or count < limit then
	count = redis.call('HINCRBY', KEYS[1], 'count', 1)
	redis.call('HSET', KEYS[1], 'last_updated', ARGV[1])
	admitted = 1
end
return {admitted, count, limit, redis.call('HGET', KEYS[1], 'last_updated')}
`)

var decrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
if tonumber(redis.call('HGET', KEYS[1], 'count')) > 0 then
	redis.call('HINCRBY', KEYS[1], 'count', -1)
	redis.call('HSET', KEYS[1], 'last_updated', ARGV[1])
end
return redis.call('HMGET', KEYS[1], 'count', 'limit', 'last_updated')
`)

// ARGV: field, value, last_updated, default limit
var setFieldScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	redis.call('HSET', KEYS[1], 'count', 0, 'limit', ARGV[4])
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2], 'last_updated', ARGV[3])
return redis.call('HMGET', KEYS[1], 'count', 'limit', 'last_updated')
`)

// Connect creates a client from a redis:// URL or a host:port address and
// checks that the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Store implements services.QuotaStore on Redis hashes.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New returns a Store using keys prefix+licenseId. An empty prefix means
// DefaultKeyPrefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

var _ services.QuotaStore = (*Store)(nil)

func (s *Store) key(licenseID string) string {
	return s.prefix + licenseID
}

func (s *Store) Get(ctx context.Context, licenseID string) (models.DeviceQuota, error) {
	fields, err := s.client.HGetAll(ctx, s.key(licenseID)).Result()
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return models.DeviceQuota{}, services.ErrQuotaNotFound
	}
	return decodeQuota(licenseID, []interface{}{fields["count"], fields["limit"], fields["last_updated"]})
}

func (s *Store) GetOrCreate(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	values, err := getOrCreateScript.Run(ctx, s.client, []string{s.key(licenseID)},
		models.DefaultDeviceLimit, utils.FormatTimestamp(now)).Slice()
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis get or create quota: %w", err)
	}
	return decodeQuota(licenseID, values)
}

func (s *Store) TryIncrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, bool, error) {
	values, err := tryIncrementScript.Run(ctx, s.client, []string{s.key(licenseID)},
		utils.FormatTimestamp(now), models.DefaultDeviceLimit).Slice()
	if errors.Is(err, redis.Nil) {
		return models.DeviceQuota{}, false, services.ErrQuotaNotFound
	}
	if err != nil {
		return models.DeviceQuota{}, false, fmt.Errorf("redis increment quota: %w", err)
	}
	if len(values) != 4 {
		return models.DeviceQuota{}, false, fmt.Errorf("redis increment quota: unexpected reply %v", values)
	}

	admitted, err := toInt(values[0])
	if err != nil {
		return models.DeviceQuota{}, false, err
	}
	quota, err := decodeQuota(licenseID, values[1:])
	if err != nil {
		return models.DeviceQuota{}, false, err
	}
	return quota, admitted == 1, nil
}

func (s *Store) Decrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	values, err := decrementScript.Run(ctx, s.client, []string{s.key(licenseID)},
		utils.FormatTimestamp(now)).Slice()
	if errors.Is(err, redis.Nil) {
		return models.DeviceQuota{}, services.ErrQuotaNotFound
	}
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis decrement quota: %w", err)
	}
	return decodeQuota(licenseID, values)
}

func (s *Store) SetCount(ctx context.Context, licenseID string, count int, now time.Time) (models.DeviceQuota, error) {
	if count < 0 {
		count = 0
	}
	return s.setField(ctx, licenseID, "count", count, now)
}

func (s *Store) SetLimit(ctx context.Context, licenseID string, limit models.DeviceLimit, now time.Time) (models.DeviceQuota, error) {
	return s.setField(ctx, licenseID, "limit", limit.Raw(), now)
}

func (s *Store) setField(ctx context.Context, licenseID, field string, value int, now time.Time) (models.DeviceQuota, error) {
	values, err := setFieldScript.Run(ctx, s.client, []string{s.key(licenseID)},
		field, value, utils.FormatTimestamp(now), models.DefaultDeviceLimit).Slice()
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis set quota %s: %w", field, err)
	}
	return decodeQuota(licenseID, values)
}

// List walks the key space with SCAN, so it is only meant for the audit job
// and admin listings.
func (s *Store) List(ctx context.Context) ([]models.DeviceQuota, error) {
	quotas := make([]models.DeviceQuota, 0)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, key := range keys {
			quota, err := s.Get(ctx, strings.TrimPrefix(key, s.prefix))
			if errors.Is(err, services.ErrQuotaNotFound) {
				// deleted between SCAN and HGETALL
				continue
			}
			if err != nil {
				return nil, err
			}
			quotas = append(quotas, quota)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(quotas, func(i, j int) bool { return quotas[i].LicenseID < quotas[j].LicenseID })
	return quotas, nil
}

// decodeQuota reads a {count, limit, last_updated} reply.
func decodeQuota(licenseID string, values []interface{}) (models.DeviceQuota, error) {
	if len(values) != 3 {
		return models.DeviceQuota{}, fmt.Errorf("redis quota %s: unexpected reply %v", licenseID, values)
	}
	count, err := toInt(values[0])
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis quota %s count: %w", licenseID, err)
	}
	rawLimit, err := toInt(values[1])
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis quota %s limit: %w", licenseID, err)
	}
	lastUpdated, _ := values[2].(string)
	ts, err := utils.ParseTimestamp(lastUpdated)
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("redis quota %s last_updated: %w", licenseID, err)
	}

	if count < 0 {
		count = 0
	}
	return models.DeviceQuota{
		LicenseID:   licenseID,
		Count:       count,
		Limit:       models.StoredDeviceLimit(rawLimit),
		LastUpdated: ts,
	}, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected value %T", v)
}
