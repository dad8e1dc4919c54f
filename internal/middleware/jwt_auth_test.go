package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/nextgendev/talker/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, issuedAt time.Time) string {
	claims := &models.JwtCustomClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(7 * 24 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func invoke(t *testing.T, authHeader string) (error, *models.JwtCustomClaims) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *models.JwtCustomClaims
	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		seen = ClaimsFromContext(c)
		return c.NoContent(http.StatusOK)
	})
	return handler(c), seen
}

func TestJWTAuthAttachesClaims(t *testing.T) {
	token := signToken(t, testSecret, time.Now())

	err, claims := invoke(t, "Bearer "+token)
	require.NoError(t, err)
	require.NotNil(t, claims)
	require.EqualValues(t, 42, claims.UserID)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	err, _ := invoke(t, "")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	err, _ := invoke(t, "Token abc.def.ghi")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", time.Now())

	err, _ := invoke(t, "Bearer "+token)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(-8*24*time.Hour))

	err, _ := invoke(t, "Bearer "+token)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
