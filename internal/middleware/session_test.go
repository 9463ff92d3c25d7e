package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mattress_money/internal/api"
	"mattress_money/internal/auth"
	"mattress_money/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserStore struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUserStore) ByUsername(username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

type fakeTokenStore struct {
	tokens []domain.LoginToken
}

func (f *fakeTokenStore) Create(token *domain.LoginToken) error {
	f.tokens = append(f.tokens, *token)
	return nil
}

func (f *fakeTokenStore) ActiveForUser(username string) ([]domain.LoginToken, error) {
	now := time.Now().UTC()
	var active []domain.LoginToken
	for _, tok := range f.tokens {
		if tok.Username == username && tok.ExpiresAt.After(now) {
			active = append(active, tok)
		}
	}
	return active, nil
}

func (f *fakeTokenStore) PurgeExpired() error { return nil }

func newProtectedRouter(users *fakeUserStore) (*gin.Engine, *auth.Service) {
	authSvc := auth.NewService(users, &fakeTokenStore{})
	r := gin.New()
	r.GET("/protected", SessionAuth(authSvc), func(c *gin.Context) {
		user := c.MustGet(api.UserKey).(*domain.User)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r, authSvc
}

func request(router *gin.Engine, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSessionAuthValid(t *testing.T) {
	users := &fakeUserStore{users: map[string]*domain.User{"alice": {Username: "alice"}}}
	router, authSvc := newProtectedRouter(users)

	issued, err := authSvc.IssueToken("alice", "203.0.113.7")
	require.NoError(t, err)

	rec := request(router,
		&http.Cookie{Name: api.CookieUsername, Value: "alice"},
		&http.Cookie{Name: api.CookieToken, Value: issued.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestSessionAuthRejectsMissingCookies(t *testing.T) {
	users := &fakeUserStore{users: map[string]*domain.User{}}
	router, _ := newProtectedRouter(users)

	rec := request(router)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":8`)
}

func TestSessionAuthRejectsStaleToken(t *testing.T) {
	users := &fakeUserStore{users: map[string]*domain.User{"alice": {Username: "alice"}}}
	router, _ := newProtectedRouter(users)

	rec := request(router,
		&http.Cookie{Name: api.CookieUsername, Value: "alice"},
		&http.Cookie{Name: api.CookieToken, Value: "not-a-real-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthStoreFailure(t *testing.T) {
	users := &fakeUserStore{err: errors.New("down")}
	router, _ := newProtectedRouter(users)

	rec := request(router,
		&http.Cookie{Name: api.CookieUsername, Value: "alice"},
		&http.Cookie{Name: api.CookieToken, Value: "anything"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":6`)
}
