package shared_test

import (
	"context"
	"errors"
	"roomsense/shared"
	cacheMocks "roomsense/shared/cache/mocks"
	"roomsense/shared/constant"
	"roomsense/shared/dto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		value string
		want  *bool
	}{
		{value: "true", want: boolPtr(true)},
		{value: "1", want: boolPtr(true)},
		{value: "FALSE", want: boolPtr(false)},
		{value: "0", want: boolPtr(false)},
		{value: "", want: nil},
		{value: "occupied", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.ConvertStringToBool(tt.value))
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{total: 0, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 95, limit: 20, want: 5},
		{total: 7, limit: 0, want: 1},
		{total: 7, limit: -3, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

type roomPatch struct {
	Name     string  `db:"name"`
	Capacity int     `db:"capacity"`
	DeviceID *string `db:"device_id"`
	Note     string
}

func TestTransformFields(t *testing.T) {
	before := time.Now()

	fields := shared.TransformFields(roomPatch{Capacity: 12, Note: "ignored"}, "admin-1")

	assert.Equal(t, 12, fields["capacity"])
	assert.NotContains(t, fields, "name")
	assert.NotContains(t, fields, "device_id")
	assert.NotContains(t, fields, "Note")
	assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

	modifiedAt, ok := fields[constant.FieldModifiedAt].(time.Time)
	require.True(t, ok)
	assert.False(t, modifiedAt.Before(before.Add(-time.Second)))
}

func TestTransformFields_Pointer(t *testing.T) {
	device := "ESP32_07"

	fields := shared.TransformFields(roomPatch{DeviceID: &device}, "admin-1")

	assert.Equal(t, &device, fields["device_id"])
	assert.Len(t, fields, 3)
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("room-1", "id", "rooms")

	where, args := filter.GetWhereClause()

	assert.Equal(t, "(rooms.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "room-1"}, args)
}

func boolPtr(b bool) *bool {
	return &b
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "room:get:abc", shared.BuildCacheKey(constant.CacheKeyRoom, "abc"))
	assert.Equal(t, "limiter:127.0.0.1:curl", shared.BuildCacheKey("limiter", "127.0.0.1", "curl"))
	assert.Equal(t, "room:gets", shared.BuildCacheKey(constant.CacheKeyRooms))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	occupied := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "is_occupied", Value: true, Operator: dto.FilterOperatorEq},
		},
	}
	vacant := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "is_occupied", Value: false, Operator: dto.FilterOperatorEq},
		},
	}

	first := shared.BuildCacheKeyWithQuery(constant.CacheKeyRooms, params, occupied)
	second := shared.BuildCacheKeyWithQuery(constant.CacheKeyRooms, params, occupied)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, constant.CacheKeyRooms+":"))
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery(constant.CacheKeyRooms, params, vacant))
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery(constant.CacheKeyRooms, dto.QueryParams{Page: 2, Limit: 10}, occupied))
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery(constant.CacheKeyRooms, params, occupied, "bookings"))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Bump(gomock.Any(), constant.CacheNamespaceRoom).Return(nil)
	shared.InvalidateCaches(context.Background(), mockCache, constant.CacheNamespaceRoom)

	mockCache.EXPECT().Bump(gomock.Any(), constant.CacheNamespaceRoom, constant.CacheNamespaceBooking).Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), mockCache, constant.CacheNamespaceRoom, constant.CacheNamespaceBooking)
}

func TestVersionedCacheKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Version(gomock.Any(), constant.CacheNamespaceBooking, constant.CacheNamespaceRoom).Return("3.7", nil)

	key, ok := shared.VersionedCacheKey(context.Background(), mockCache, "booking:get:b-1",
		constant.CacheNamespaceBooking, constant.CacheNamespaceRoom)
	assert.True(t, ok)
	assert.Equal(t, "booking:get:b-1@v3.7", key)

	mockCache.EXPECT().Version(gomock.Any(), constant.CacheNamespaceRoom).Return("", errors.New("redis down"))

	_, ok = shared.VersionedCacheKey(context.Background(), mockCache, "room:get:r-1", constant.CacheNamespaceRoom)
	assert.False(t, ok)
}

func TestSaveCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Save(gomock.Any(), "room:get:r-1@v1", "value", 60).Return(errors.New("redis down"))
	shared.SaveCache(context.Background(), mockCache, "room:get:r-1@v1", "value", 60)

	// no Save expected
	shared.SaveCache(context.Background(), mockCache, "room:get:r-1@v1", "value", 0)
}
