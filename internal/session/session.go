package session

import (
	"net/http"
	"sync"

	"github.com/fmuoria/resume-tailor/internal/models"
	"golang.org/x/oauth2"
)

// TokenKey is the storage key holding the bearer token
const TokenKey = "jwt_token"

// ErrNoToken is returned for authenticated calls made while logged out
var ErrNoToken = models.NewError(models.ErrAuth, "You are not logged in.", nil)

// Storage is the persistent key-value store backing the session.
// fyne.Preferences satisfies it.
type Storage interface {
	String(key string) string
	SetString(key string, value string)
	RemoveValue(key string)
}

// Session holds the bearer credential for authenticated backend calls
type Session struct {
	mu      sync.RWMutex
	storage Storage
	token   string
}

// Init creates a session and reads any persisted token once
func Init(storage Storage) *Session {
	return &Session{
		storage: storage,
		token:   storage.String(TokenKey),
	}
}

// Token returns the current token and whether one is set
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken persists the token and makes it current
func (s *Session) SetToken(token string) {
	if token == "" {
		s.ClearToken()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.SetString(TokenKey, token)
	s.token = token
}

// ClearToken removes the token from storage and memory
func (s *Session) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.RemoveValue(TokenKey)
	s.token = ""
}

// Teardown ends the session. When forget is set the persisted token is
// removed too, otherwise it stays for the next Init.
func (s *Session) Teardown(forget bool) {
	if forget {
		s.ClearToken()
		return
	}
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// tokenSource reads the session token at request time so a client built
// before login or logout always sends the current credential
type tokenSource struct{ s *Session }

func (ts tokenSource) Token() (*oauth2.Token, error) {
	token, ok := ts.s.Token()
	if !ok {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// HTTPClient returns a client that sends "Authorization: Bearer <token>" on
// every request. base supplies the underlying transport and may be nil.
func (s *Session) HTTPClient(base *http.Client) *http.Client {
	var rt http.RoundTripper
	client := &http.Client{}
	if base != nil {
		rt = base.Transport
		client.Timeout = base.Timeout
		client.Jar = base.Jar
		client.CheckRedirect = base.CheckRedirect
	}
	client.Transport = &oauth2.Transport{Source: tokenSource{s: s}, Base: rt}
	return client
}

// MemoryStorage is an in-process Storage, used when no persistent store is available
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) String(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemoryStorage) SetString(key string, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStorage) RemoveValue(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
