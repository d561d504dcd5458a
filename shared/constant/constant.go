package constant

import "time"

// contextKey keeps caller identity values private to this package's keys.
type contextKey string

const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserEmail contextKey = "user_email"
	ContextKeyUserRole  contextKey = "user_role"
	ContextKeyTokenID   contextKey = "token_id"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	RequestParamPage    = "page"
	RequestParamLimit   = "limit"
	RequestParamSortBy  = "sort_by"
	RequestParamSortDir = "sort_dir"
)

const (
	RequestParamID       = "id"
	RequestParamDeviceID = "deviceID"
	RequestParamAt       = "at"
)

const (
	DefaultValuePage  = 1
	DefaultValueLimit = 10
	MaxValueLimit     = 100
)

const (
	FieldCreatedAt  = "created_at"
	FieldCreatedBy  = "created_by"
	FieldModifiedAt = "modified_at"
	FieldModifiedBy = "modified_by"
)

const (
	// SQLSTATE codes surfaced by lib/pq.
	PqErrorCodeUniqueViolation    = "23505"
	PqErrorCodeExclusionViolation = "23P01"
)

// Cache key prefixes.
const (
	CacheKeyRoom      = "room:get"
	CacheKeyRooms     = "room:gets"
	CacheKeyRoomCount = "room:count"

	CacheKeyBooking      = "booking:get"
	CacheKeyBookings     = "booking:gets"
	CacheKeyBookingCount = "booking:count"
)

// Cache namespaces. Every cached read is keyed by the versions of the
// namespaces it depends on.
const (
	CacheNamespaceRoom    = "room"
	CacheNamespaceBooking = "booking"
)

const DateFormat = time.RFC3339

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelMQTTScopeName       = "mqtt"

	OtelQueryAttributeKey = "query"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderRequestID          = "X-Request-ID"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
	RequestHeaderAPIKey             = "X-API-Key"
)

const ContentTypeJSON = "application/json"

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
	ResponseErrorInternal             = "INTERNAL SERVER ERROR"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

// Event types published to Kafka.
const (
	EventBookingCreated     = "booking.created"
	EventBookingRescheduled = "booking.rescheduled"
	EventBookingCancelled   = "booking.cancelled"
	EventOccupancyChanged   = "occupancy.changed"
)

const Empty = ""
