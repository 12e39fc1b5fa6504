package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"session_auth/internal/models"
	"session_auth/internal/service"

	"github.com/gin-gonic/gin"
)

func TestRunGuards_StopsAtFirstRejection(t *testing.T) {
	var calls []string
	pass := func(name string) guard {
		return func(context.Context, *guardInput) (*rejection, error) {
			calls = append(calls, name)
			return nil, nil
		}
	}
	reject := func(name string) guard {
		return func(context.Context, *guardInput) (*rejection, error) {
			calls = append(calls, name)
			return &rejection{status: http.StatusTeapot, message: name}, nil
		}
	}

	rej, err := runGuards(context.Background(), &guardInput{}, []guard{pass("a"), reject("b"), pass("c")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rej == nil || rej.message != "b" {
		t.Fatalf("expected rejection from b, got %+v", rej)
	}
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Fatalf("unexpected call order %v", calls)
	}
}

func TestRunGuards_ErrorStopsChain(t *testing.T) {
	boom := errors.New("boom")
	called := false
	fail := func(context.Context, *guardInput) (*rejection, error) { return nil, boom }
	after := func(context.Context, *guardInput) (*rejection, error) {
		called = true
		return nil, nil
	}

	_, err := runGuards(context.Background(), &guardInput{}, []guard{fail, after})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Fatalf("guard after an error must not run")
	}
}

func TestRunGuards_EmptyChainContinues(t *testing.T) {
	rej, err := runGuards(context.Background(), &guardInput{}, nil)
	if rej != nil || err != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", rej, err)
	}
}

func TestCheckPasswordLength_ConfigurableMinimum(t *testing.T) {
	h := NewHandler(&service.Service{}, newTestCookie(), Options{MinPasswordLength: 8}, nil)

	rej, _ := h.checkPasswordLength(context.Background(), &guardInput{creds: credentials{Password: "1234567"}})
	if rej == nil || rej.status != http.StatusUnprocessableEntity || rej.message != "Password must be longer than 7 chars" {
		t.Fatalf("unexpected rejection %+v", rej)
	}
	rej, _ = h.checkPasswordLength(context.Background(), &guardInput{creds: credentials{Password: "12345678"}})
	if rej != nil {
		t.Fatalf("expected 8-char password to pass, got %+v", rej)
	}
}

func TestCheckUsernameExists_AttachesUser(t *testing.T) {
	user := &models.User{ID: 9, Username: "sue", PasswordHash: "h"}
	h := NewHandler(&service.Service{Authorization: &mockAuth{users: map[string]*models.User{"sue": user}}}, newTestCookie(), Options{}, nil)

	in := &guardInput{creds: credentials{Username: "sue"}}
	rej, err := h.checkUsernameExists(context.Background(), in)
	if rej != nil || err != nil {
		t.Fatalf("expected continue, got (%+v, %v)", rej, err)
	}
	if in.user != user {
		t.Fatalf("expected stored user attached, got %+v", in.user)
	}
}

func TestGuarded_PassesInputToHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &models.User{ID: 9, Username: "sue"}
	h := NewHandler(&service.Service{Authorization: &mockAuth{users: map[string]*models.User{"sue": user}}}, newTestCookie(), Options{}, nil)

	r := gin.New()
	r.POST("/guarded", h.guarded(h.checkUsernameExists), func(c *gin.Context) {
		in := guardInputFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": in.user.ID, "password": in.creds.Password})
	})

	w := doRequest(r, http.MethodPost, "/guarded", `{"username":"sue","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"password":"pw","user_id":9}` {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestGuardInputFrom_MissingReturnsEmpty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if in := guardInputFrom(c); in == nil || in.user != nil {
		t.Fatalf("expected empty input, got %+v", in)
	}
}
