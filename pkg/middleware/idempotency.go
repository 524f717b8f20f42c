package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"
)

const HeaderIdempotentReplayed = "Idempotent-Replayed"

type IdempotencyStore interface {
	// Reserve claims key for a request in flight. It reports the cached
	// response when the key already completed, and false when another
	// request holds the key.
	Reserve(key string) (cached *CachedResponse, reserved bool)
	Complete(key string, response *CachedResponse)
	Release(key string)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

type entry struct {
	response *CachedResponse
	started  time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Reserve(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && !s.expired(e) {
		return e.response, false
	}

	s.entries[key] = &entry{started: s.now()}
	return nil, true
}

func (s *InMemoryIdempotencyStore) Complete(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = s.now()
	s.entries[key] = &entry{response: response, started: response.CreatedAt}
}

func (s *InMemoryIdempotencyStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && e.response == nil {
		delete(s.entries, key)
	}
}

// expired must be called with mu held.
func (s *InMemoryIdempotencyStore) expired(e *entry) bool {
	return s.now().Sub(e.started) > s.ttl
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if s.expired(e) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated key on
// the same method, path and caller. A key still in flight answers 409.
// Safe methods are never cached.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "Idempotency-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			cached, reserved := store.Reserve(key)
			if cached != nil {
				log.Debug("Replaying idempotent response", "method", r.Method, "path", r.URL.Path, "status", cached.StatusCode)
				replayCachedResponse(w, cached)
				return
			}
			if !reserved {
				log.Warn("Idempotency key already in flight", "method", r.Method, "path", r.URL.Path)
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this idempotency key is already in progress"))
				return
			}

			completed := false
			defer func() {
				if !completed {
					store.Release(key)
				}
			}()

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			if capture.statusCode >= 200 && capture.statusCode < 300 {
				store.Complete(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
				completed = true
			}
		})
	}
}

// idempotencyKey scopes the client key to the caller's credentials so two
// sessions never share a cached response.
func idempotencyKey(r *http.Request, headerName string) string {
	key := r.Header.Get(headerName)
	if key == "" {
		return ""
	}
	caller := sha256.Sum256([]byte(r.Header.Get("Authorization")))
	return r.Method + " " + r.URL.Path + " " + hex.EncodeToString(caller[:8]) + " " + key
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set(HeaderIdempotentReplayed, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
