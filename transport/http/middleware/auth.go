package middleware

import (
	"context"
	"errors"
	"net/http"
	"roomsense/config"
	"roomsense/infras/jwt"
	"roomsense/infras/otel"
	"roomsense/permissions"
	"roomsense/shared/constant"
	"roomsense/shared/failure"
	"roomsense/transport/http/response"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type SkipAuthKey string

const skipAuth = SkipAuthKey("skip")

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole guards the versioned API. Devices present X-API-Key; people
// present a bearer token issued by the external identity provider.
type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

// routePattern resolves the request to the pattern it was registered with,
// e.g. /v1/rooms/{id}.
func routePattern(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return request.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
}

func skipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipAuth).(bool)

	return skip
}

func (m *authRoleImpl) lookup(request *http.Request) permissions.Permission {
	if m.permission == nil {
		return permissions.Permission{}
	}

	return m.permission.FindPermissions(routePattern(request), request.Method)
}

// Auth verifies the bearer token and puts the caller identity on the context.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		if skipped(ctx) || m.lookup(request).Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       routePattern(request),
			"http.method":     request.Method,
		})

		reject := func(message string) {
			err := failure.Unauthorized(message)

			scope.TraceError(err)
			scope.End()
			response.WithError(writer, err)
		}

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == constant.Empty {
			reject("Missing authorization header")

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			reject("Invalid authorization header format")

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString, jwt.AccessToken)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				reject("Token has expired")
			case errors.Is(err, jwt.ErrInvalidToken):
				reject("Invalid token")
			case errors.Is(err, jwt.ErrInvalidClaim):
				reject("Invalid token claims")
			default:
				reject("Token validation failed")
			}

			return
		}

		if claims.Role == constant.Empty {
			log.Warn().Str("userID", claims.UserID).Msg("JWT claims: Role is empty, treating caller as user")

			claims.Role = constant.RoleUser
		}

		ctx = request.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC checks the caller role against the embedded permission table. Routes
// missing from the table are open to any authenticated caller.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")

		if m.permission == nil {
			scope.End()
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		permission := m.lookup(request)

		if skipped(ctx) {
			if !permission.Device {
				err := failure.ForbiddenError

				scope.TraceError(err)
				scope.SetAttribute("reason", "device_route_not_allowed")
				scope.End()
				response.WithError(writer, err)

				return
			}

			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		if m.permission.Skip || permission.Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		userRole, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if len(permission.Permissions) > 0 && !slices.Contains(permission.Permissions, userRole) {
			err := failure.ForbiddenError

			scope.TraceError(err)
			scope.SetAttributes(map[string]any{
				"user_role":     userRole,
				"allowed_roles": permission.Permissions,
				"reason":        "role_not_allowed",
			})
			scope.End()
			response.WithError(writer, err)

			return
		}

		scope.End()
		next.ServeHTTP(writer, request)
	})
}

// APIKey admits sensor devices. A request carrying the configured key skips
// the bearer token and may only reach routes marked as device routes; a
// wrong key is rejected outright.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")

		ctx := context.WithValue(request.Context(), skipAuth, false)
		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)

		if apiKey == constant.Empty {
			scope.SetAttribute("http.source", "client")
			scope.End()
			next.ServeHTTP(writer, request.WithContext(ctx))

			return
		}

		scope.SetAttribute("http.source", "device")

		if m.cfg.App.APIKey == constant.Empty || apiKey != m.cfg.App.APIKey {
			err := failure.ForbiddenError

			scope.TraceError(err)
			scope.End()
			response.WithError(writer, err)

			return
		}

		ctx = context.WithValue(ctx, skipAuth, true)

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
