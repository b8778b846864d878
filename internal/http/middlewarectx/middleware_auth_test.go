package middlewarectx

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pleytv/iptv-backend/internal/lib/jwt"
)

const testSecret = "middleware_test_secret_key"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func issueToken(t *testing.T, maker jwt.Maker, role string) string {
	t.Helper()
	token, err := maker.GenerateToken(jwt.Claims{
		UserID:    7,
		Name:      "Ana Torres",
		Email:     "ana@example.com",
		Role:      role,
		Country:   "México",
		BirthDate: "01/01/1995",
	})
	require.NoError(t, err)
	return token
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewMaker(testSecret, time.Hour, 10*time.Minute)
	expiredMaker := jwt.NewMaker(testSecret, -time.Minute, 10*time.Minute)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		wantIdentity   bool
	}{
		{
			name:           "no authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "header without bearer prefix",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed token",
			authHeader:     "Bearer not.a.token",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + issueToken(t, expiredMaker, "client"),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + issueToken(t, maker, "client"),
			expectedStatus: http.StatusOK,
			wantIdentity:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIdentity *Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIdentity, _ = FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(maker, testLogger())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.wantIdentity {
				require.NotNil(t, gotIdentity)
				assert.Equal(t, int64(7), gotIdentity.UserID)
				assert.Equal(t, "ana@example.com", gotIdentity.Email)
				assert.Equal(t, "client", gotIdentity.Role)
				assert.Equal(t, "México", gotIdentity.Country)
				assert.Equal(t, "01/01/1995", gotIdentity.BirthDate)
			} else {
				assert.Nil(t, gotIdentity)
			}
		})
	}
}

func TestJWTMiddleware_SlidingRefresh(t *testing.T) {
	// TTL меньше порога обновления: каждый валидный запрос получает замену.
	shortMaker := jwt.NewMaker(testSecret, 5*time.Minute, 10*time.Minute)
	longMaker := jwt.NewMaker(testSecret, time.Hour, 10*time.Minute)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, shortMaker, "client"))
	w := httptest.NewRecorder()
	JWTMiddleware(shortMaker, testLogger())(next).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	newToken := w.Header().Get(NewTokenHeader)
	require.NotEmpty(t, newToken, "near-expiry token must be reissued")

	claims, err := shortMaker.ParseToken(newToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "client", claims.Role)

	// Свежему токену замена не выдаётся.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, longMaker, "client"))
	w = httptest.NewRecorder()
	JWTMiddleware(longMaker, testLogger())(next).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(NewTokenHeader))
}
