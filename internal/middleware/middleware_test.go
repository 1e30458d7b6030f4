package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/SscSPs/fincontrol/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "middleware-test-secret"
	issuer = "fincontrol-test"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", middleware.AuthMiddleware(secret, issuer), middleware.TenantMiddleware(), func(c *gin.Context) {
		cc, ok := middleware.GetCommandContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant": cc.TenantID, "maker": cc.Maker})
	})
	return r
}

func serve(r *gin.Engine, authorization, tenant string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if tenant != "" {
		req.Header.Set(middleware.TenantHeader, tenant)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signed(t *testing.T, claims jwt.RegisteredClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func TestAuthAndTenant_Valid(t *testing.T) {
	tok, err := utils.GenerateActorToken("maker-1", secret, time.Hour, issuer)
	require.NoError(t, err)

	w := serve(newRouter(), "Bearer "+tok, "tenant-1")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tenant-1", body["tenant"])
	assert.Equal(t, "maker-1", body["maker"])
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	now := time.Now()
	expired := signed(t, jwt.RegisteredClaims{
		Issuer: issuer, Subject: "maker-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}, secret)
	wrongIssuer := signed(t, jwt.RegisteredClaims{
		Issuer: "someone-else", Subject: "maker-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, secret)
	noSubject := signed(t, jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, secret)
	longSubject := signed(t, jwt.RegisteredClaims{
		Issuer: issuer, Subject: strings.Repeat("u", utils.MaxSubjectLength+1),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, secret)
	wrongKey := signed(t, jwt.RegisteredClaims{
		Issuer: issuer, Subject: "maker-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}, "another-secret")

	tests := []struct {
		name          string
		authorization string
		message       string
	}{
		{"missing header", "", "Authorization header required"},
		{"not bearer", "Basic abc", "Authorization header format must be Bearer {token}"},
		{"expired", "Bearer " + expired, "Token has expired"},
		{"wrong issuer", "Bearer " + wrongIssuer, "Invalid token"},
		{"no subject", "Bearer " + noSubject, "Invalid token claims"},
		{"subject too long", "Bearer " + longSubject, "Invalid token claims"},
		{"wrong key", "Bearer " + wrongKey, "Invalid token"},
	}
	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.authorization, "tenant-1")

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestTenantMiddleware_Rejects(t *testing.T) {
	tok, err := utils.GenerateActorToken("maker-1", secret, time.Hour, issuer)
	require.NoError(t, err)
	r := newRouter()

	for name, tenant := range map[string]string{
		"missing":   "",
		"bad chars": "tenant/1",
		"leading -": "-tenant",
		"too long":  "t0123456789012345678901234567890123456789012345678901234567890123",
	} {
		t.Run(name, func(t *testing.T) {
			w := serve(r, "Bearer "+tok, tenant)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestParseActorToken(t *testing.T) {
	tok, err := utils.GenerateActorToken("checker-1", secret, time.Hour, issuer)
	require.NoError(t, err)

	subject, err := utils.ParseActorToken(tok, secret, "")
	require.NoError(t, err)
	assert.Equal(t, "checker-1", subject, "an empty issuer skips the issuer check")

	_, err = utils.ParseActorToken(tok, secret, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "checker-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = utils.ParseActorToken(unsigned, secret, "")
	assert.Error(t, err)
}
