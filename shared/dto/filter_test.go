package dto_test

import (
	"roomsense/shared/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equal with table",
			filter:    dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "bookings"},
			wantWhere: "bookings.room_id = :room_id",
			wantArgs:  map[string]any{"room_id": "r-1"},
		},
		{
			name:      "strictly greater",
			filter:    dto.Filter{Field: "end_time", Value: at, Operator: dto.FilterOperatorGreater},
			wantWhere: "end_time > :end_time",
			wantArgs:  map[string]any{"end_time": at},
		},
		{
			name:      "strictly less with arg name",
			filter:    dto.Filter{ArgName: "until", Field: "start_time", Value: at, Operator: dto.FilterOperatorLess},
			wantWhere: "start_time < :until",
			wantArgs:  map[string]any{"until": at},
		},
		{
			name:      "case insensitive match",
			filter:    dto.Filter{Field: "name", Value: "lab", Operator: dto.FilterOperatorLike, Table: "rooms"},
			wantWhere: "LOWER(rooms.name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": "%lab%"},
		},
		{
			name:      "in expands slice",
			filter:    dto.Filter{Field: "room_id", Value: []string{"r-1", "r-2"}, Operator: dto.FilterOperatorIn},
			wantWhere: "room_id IN (:room_id_0, :room_id_1)",
			wantArgs:  map[string]any{"room_id_0": "r-1", "room_id_1": "r-2"},
		},
		{
			name:      "in with empty slice matches nothing",
			filter:    dto.Filter{Field: "room_id", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "in with scalar",
			filter:    dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorIn},
			wantWhere: "room_id IN (:room_id)",
			wantArgs:  map[string]any{"room_id": "r-1"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "deleted_at", Operator: dto.FilterIsNull, Table: "rooms"},
			wantWhere: "rooms.deleted_at IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "name", Value: "x", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		group     dto.FilterGroup
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:     "empty group yields no clause",
			wantArgs: map[string]any{},
		},
		{
			name: "nested empty group is skipped",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.FilterGroup{},
					dto.Filter{Field: "deleted_at", Operator: dto.FilterIsNull, Table: "rooms"},
				},
			},
			wantWhere: "(rooms.deleted_at IS NULL)",
			wantArgs:  map[string]any{},
		},
		{
			name: "missing operator defaults to AND",
			group: dto.FilterGroup{
				Filters: []any{
					dto.Filter{Field: "is_occupied", Value: true, Operator: dto.FilterOperatorEq},
					dto.Filter{Field: "capacity", Value: 4, Operator: dto.FilterOperatorGreaterEq},
				},
			},
			wantWhere: "(is_occupied = :is_occupied AND capacity >= :capacity)",
			wantArgs:  map[string]any{"is_occupied": true, "capacity": 4},
		},
		{
			name: "or group nested inside and group",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorEq},
					dto.FilterGroup{
						Operator: dto.FilterGroupOperatorOr,
						Filters: []any{
							dto.Filter{Field: "user_id", Value: "u-1", Operator: dto.FilterOperatorEq},
							dto.Filter{Field: "user_id", ArgName: "other_user", Value: "u-2", Operator: dto.FilterOperatorEq},
						},
					},
				},
			},
			wantWhere: "(room_id = :room_id AND (user_id = :user_id OR user_id = :other_user))",
			wantArgs:  map[string]any{"room_id": "r-1", "user_id": "u-1", "other_user": "u-2"},
		},
		{
			name: "unsupported members are ignored",
			group: dto.FilterGroup{
				Filters: []any{
					"rooms.id = 1",
					dto.Filter{Field: "id", Value: "r-1", Operator: dto.FilterOperatorNotEq},
				},
			},
			wantWhere: "(id != :id)",
			wantArgs:  map[string]any{"id": "r-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.group.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
