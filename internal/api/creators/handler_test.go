package creators

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mimo-api/internal/app/http/middleware"
	"mimo-api/internal/app/profile"
	"mimo-api/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeProfiles struct {
	saveErr error
}

func (f *fakeProfiles) Load(_ context.Context, identity string) (*catalog.Creator, bool) {
	if identity != "U1" {
		return nil, false
	}
	return &catalog.Creator{ID: "U1", Username: "ana", SocialLinks: []catalog.SocialLink{}}, true
}

func (f *fakeProfiles) Save(_ context.Context, identity string, c catalog.Creator) (*catalog.Creator, error) {
	c.ID = identity
	switch {
	case f.saveErr == nil:
		return &c, nil
	case errors.Is(f.saveErr, catalog.ErrInvalidCreator), errors.Is(f.saveErr, profile.ErrUsernameTaken):
		return nil, f.saveErr
	}
	return &c, f.saveErr
}

func (f *fakeProfiles) Public(_ context.Context, username string) (*catalog.Creator, error) {
	if username != "ana" {
		return nil, profile.ErrCreatorNotFound
	}
	return &catalog.Creator{ID: "U1", Username: "ana"}, nil
}

func router(f *fakeProfiles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, "U1") })
	h := NewHandler(f)
	r.GET("/creators/:username", h.Public)
	r.GET("/profile", h.Me)
	r.PUT("/profile", h.Update)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublic(t *testing.T) {
	r := router(&fakeProfiles{})
	w := serve(r, http.MethodGet, "/creators/ana", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"ana"`)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/creators/bob", "").Code)
}

func TestMe(t *testing.T) {
	w := serve(router(&fakeProfiles{}), http.MethodGet, "/profile", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"U1"`)
}

func TestUpdate(t *testing.T) {
	cases := []struct {
		err    error
		code   int
		synced string
	}{
		{nil, http.StatusOK, `"synced":true`},
		{fmt.Errorf("%w: bad username", catalog.ErrInvalidCreator), http.StatusBadRequest, ""},
		{profile.ErrUsernameTaken, http.StatusConflict, ""},
		{errors.New("db down"), http.StatusOK, `"synced":false`},
	}
	for _, tc := range cases {
		w := serve(router(&fakeProfiles{saveErr: tc.err}), http.MethodPut, "/profile", `{"username":"ana","name":"Ana"}`)
		assert.Equal(t, tc.code, w.Code, w.Body.String())
		if tc.synced != "" {
			assert.Contains(t, w.Body.String(), tc.synced)
		}
	}

	w := serve(router(&fakeProfiles{}), http.MethodPut, "/profile", `[1]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
