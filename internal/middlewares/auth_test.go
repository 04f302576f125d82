package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiranbanna12/xrozen-chat/middleware/jwt"
)

func newAuthRouter(tokens *jwt.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokens), func(c *gin.Context) {
		identity, ok := Identity(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"participant": identity.ParticipantID()})
	})
	return r
}

func TestAuthMiddleware_UserToken(t *testing.T) {
	tokens := jwt.NewTokenManager("secret", 24, 72)
	r := newAuthRouter(tokens)

	token, err := tokens.GenerateUserToken("alice", "Alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddleware_GuestTokenViaQuery(t *testing.T) {
	tokens := jwt.NewTokenManager("secret", 24, 72)
	r := newAuthRouter(tokens)

	token, err := tokens.GenerateGuestToken("Dana", "p1", "s1")
	require.NoError(t, err)

	// WebSocket dials cannot set headers; the token rides the query.
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "guest:Dana")
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tokens := jwt.NewTokenManager("secret", 24, 72)
	r := newAuthRouter(tokens)

	// No token at all.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with another secret.
	other := jwt.NewTokenManager("other", 24, 72)
	token, err := other.GenerateUserToken("alice", "Alice")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := jwt.NewTokenManager("secret", 24, 72)

	r := gin.New()
	r.POST("/resolve", OptionalAuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserID)})
	})

	// Anonymous callers pass straight through.
	req := httptest.NewRequest(http.MethodPost, "/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	// A valid user token identifies the caller.
	token, err := tokens.GenerateUserToken("alice", "Alice")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/resolve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// A broken token is still rejected.
	req = httptest.NewRequest(http.MethodPost, "/resolve", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
