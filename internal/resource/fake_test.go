package resource

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boldserve/adminconsole/internal/apiclient"
	"github.com/boldserve/adminconsole/internal/session"
)

// fakeBackend is an in-memory stand-in for the services API.
type fakeBackend struct {
	mu       sync.Mutex
	products []map[string]interface{}
	nextID   int
	lastAuth string
	failNext int
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuth = r.Header.Get("Authorization")
	if f.failNext != 0 {
		w.WriteHeader(f.failNext)
		w.Write([]byte(`{"message":"forced failure"}`))
		f.failNext = 0
		return
	}

	switch {
	case r.URL.Path == "/api/services" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": f.products})
	case r.URL.Path == "/api/services" && r.Method == http.MethodPost:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		body["_id"] = "svc" + string(rune('0'+f.nextID))
		f.products = append(f.products, body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": body})
	case strings.HasPrefix(r.URL.Path, "/api/services/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(r.URL.Path, "/api/services/")
		for i, p := range f.products {
			if p["_id"] == id {
				f.products = append(f.products[:i], f.products[i+1:]...)
				w.Write([]byte(`{"success":true,"message":"deleted"}`))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Service not found"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, h http.Handler, token string) (*Client, *session.Manager) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	mgr := session.NewManager(session.NewMemoryStore(token))
	api := apiclient.New(srv.URL, time.Second, mgr, []string{"/api/users"})
	return New(api, mgr, NewBackendAuthenticator(api), ""), mgr
}
