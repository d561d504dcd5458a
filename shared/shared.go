package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"reflect"
	"roomsense/shared/cache"
	"roomsense/shared/constant"
	"roomsense/shared/dto"
	"roomsense/shared/timezone"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the fields of a struct into a map of updated fields.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins a cache prefix and its key parts with ":".
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// BuildCacheKeyWithQuery derives a stable key for a paginated, filtered query.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup, extras ...string) string {
	where, args := filter.GetWhereClause()

	raw, err := json.Marshal(struct {
		Params dto.QueryParams `json:"params"`
		Where  string          `json:"where"`
		Args   map[string]any  `json:"args"`
		Extras []string        `json:"extras"`
	}{
		Params: params,
		Where:  where,
		Args:   args,
		Extras: extras,
	})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key query")

		return BuildCacheKey(prefix, where)
	}

	sum := sha256.Sum256(raw)

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// VersionedCacheKey pins key to the current versions of namespaces. It
// must be called before the database read whose result is cached. ok is
// false when the versions are unavailable and the cache must be bypassed.
func VersionedCacheKey(ctx context.Context, redisCache cache.RedisCache, key string, namespaces ...string) (string, bool) {
	version, err := redisCache.Version(ctx, namespaces...)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache versions unavailable, bypassing cache")

		return "", false
	}

	return key + "@v" + version, true
}

// SaveCache stores value under a versioned key. A ttl of zero or less
// disables caching.
func SaveCache(ctx context.Context, redisCache cache.RedisCache, key string, value any, ttlSeconds int) {
	if ttlSeconds <= 0 {
		return
	}

	if err := redisCache.Save(ctx, key, value, ttlSeconds); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to save cache")
	}
}

// InvalidateCaches retires every cached read of namespaces. Call it after the
// write has committed and before answering the caller.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, namespaces ...string) {
	if err := redisCache.Bump(ctx, namespaces...); err != nil {
		log.Error().Err(err).Strs("namespaces", namespaces).Msg("failed to invalidate caches")
	}
}
