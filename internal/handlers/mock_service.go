package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"session_auth/internal/models"
	"session_auth/internal/service"
	"session_auth/internal/session"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser models.User
	registerErr  error
	users        map[string]*models.User
	lookupErr    error
	checkErr     error

	registerCalls        int
	lastRegisterUsername string
	lastRegisterPassword string
	lookupCalls          []string
	lastCheckPassword    string
}

func (m *mockAuth) Register(_ context.Context, username, password string) (models.User, error) {
	m.registerCalls++
	m.lastRegisterUsername = username
	m.lastRegisterPassword = password
	return m.registerUser, m.registerErr
}

func (m *mockAuth) LookupUser(_ context.Context, username string) (*models.User, error) {
	m.lookupCalls = append(m.lookupCalls, username)
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.users[username], nil
}

func (m *mockAuth) CheckPassword(u *models.User, password string) error {
	m.lastCheckPassword = password
	if u == nil {
		return service.ErrInvalidCredentials
	}
	return m.checkErr
}

type mockSessions struct {
	startErr error
	live     map[string]bool
	endErr   error

	started []models.User
	ended   []string
}

func (m *mockSessions) Start(_ context.Context, u models.User) (models.Session, error) {
	if m.startErr != nil {
		return models.Session{}, m.startErr
	}
	m.started = append(m.started, u)
	now := time.Now().UTC()
	return models.Session{
		ID:        "sess-new",
		User:      models.User{ID: u.ID, Username: u.Username},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}

func (m *mockSessions) Current(_ context.Context, id string) (*models.Session, error) {
	if !m.live[id] {
		return nil, nil
	}
	return &models.Session{ID: id}, nil
}

func (m *mockSessions) End(_ context.Context, id string) (bool, error) {
	m.ended = append(m.ended, id)
	if m.endErr != nil {
		return false, m.endErr
	}
	existed := m.live[id]
	delete(m.live, id)
	return existed, nil
}

// ---- Shared Test Helpers ----

const testCookieName = "sid"

func newTestCookie() *session.Cookie {
	return session.NewCookie(session.CookieConfig{Name: testCookieName, Secret: []byte("handler-test-secret")})
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, newTestCookie(), Options{}, nil)
	return h.InitRoutes()
}

// sessionCookie issues a signed cookie for id as the server would.
func sessionCookie(id string) *http.Cookie {
	now := time.Now()
	ck, err := newTestCookie().Issue(models.Session{ID: id, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		panic(err)
	}
	return ck
}

func doRequest(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
