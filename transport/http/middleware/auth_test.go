package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"roomsense/config"
	"roomsense/infras/jwt"
	jwtMocks "roomsense/infras/jwt/mocks"
	"roomsense/infras/otel/mocks"
	"roomsense/permissions"
	"roomsense/shared/constant"
	"roomsense/transport/http/middleware"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "device-key"

func newProtectedRouter(t *testing.T) (http.Handler, *jwtMocks.MockJWT) {
	t.Helper()

	jwtService := jwtMocks.NewMockJWT(gomock.NewController(t))

	cfg := &config.Config{}
	cfg.App.APIKey = testAPIKey

	authRole := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), permissions.Get(), cfg)

	ok := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Route("/v1", func(r chi.Router) {
		r.Use(authRole.APIKey)
		r.Use(authRole.Auth)
		r.Use(authRole.RBAC)

		r.Route("/motion", func(r chi.Router) {
			r.Post("/", ok)
		})
		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", ok)
			r.Get("/{id}", ok)
		})
	})

	return router, jwtService
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		apiKey     string
		token      string
		role       string
		wantStatus int
	}{
		{
			name:       "missing credentials",
			method:     http.MethodGet,
			path:       "/v1/rooms/room-1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "device posts a reading with the api key",
			method:     http.MethodPost,
			path:       "/v1/motion/",
			apiKey:     testAPIKey,
			wantStatus: http.StatusOK,
		},
		{
			name:       "device key cannot create rooms",
			method:     http.MethodPost,
			path:       "/v1/rooms/",
			apiKey:     testAPIKey,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong api key",
			method:     http.MethodPost,
			path:       "/v1/motion/",
			apiKey:     "guess",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "user cannot post readings",
			method:     http.MethodPost,
			path:       "/v1/motion/",
			token:      "user-token",
			role:       constant.RoleUser,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "user cannot create rooms",
			method:     http.MethodPost,
			path:       "/v1/rooms/",
			token:      "user-token",
			role:       constant.RoleUser,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin creates rooms",
			method:     http.MethodPost,
			path:       "/v1/rooms/",
			token:      "admin-token",
			role:       constant.RoleAdmin,
			wantStatus: http.StatusOK,
		},
		{
			name:       "user reads a room",
			method:     http.MethodGet,
			path:       "/v1/rooms/room-1",
			token:      "user-token",
			role:       constant.RoleUser,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing role is treated as user",
			method:     http.MethodPost,
			path:       "/v1/rooms/",
			token:      "roleless-token",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, jwtService := newProtectedRouter(t)

			request := httptest.NewRequest(tt.method, tt.path, nil)

			if tt.apiKey != constant.Empty {
				request.Header.Set(constant.RequestHeaderAPIKey, tt.apiKey)
			}

			if tt.token != constant.Empty {
				request.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+tt.token)

				jwtService.EXPECT().ValidateToken(tt.token, jwt.AccessToken).Return(&jwt.Claims{
					UserID: "user-1",
					Email:  "ana@example.com",
					Role:   tt.role,
				}, nil)
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestAuthRole_ExpiredToken(t *testing.T) {
	router, jwtService := newProtectedRouter(t)

	jwtService.EXPECT().ValidateToken("stale", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)

	request := httptest.NewRequest(http.MethodGet, "/v1/rooms/room-1", nil)
	request.Header.Set(constant.RequestHeaderAuthorization, "Bearer stale")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Token has expired")
}
