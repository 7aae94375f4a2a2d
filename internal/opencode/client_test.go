package opencode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Body   publishEvent
	User   string
	Pass   string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recorded
	failOn   string
	path     PathInfo
}

func (s *fakeServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path}
		rec.User, rec.Pass, _ = r.BasicAuth()
		if r.Method == http.MethodPost {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&rec.Body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		fail := s.failOn
		s.mu.Unlock()

		if fail != "" && (fail == rec.Path || fail == propertyString(rec.Body, "command")) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/path":
			_ = json.NewEncoder(w).Encode(s.path)
		case "/command":
			_ = json.NewEncoder(w).Encode([]Command{
				{Name: "compact", Description: "Compact the session", Template: "/compact"},
				{Name: "deploy", Template: "Deploy $ARGUMENTS", Agent: "ops"},
			})
		case "/agent":
			_, _ = w.Write([]byte(`[
				{"name":"build","description":"Default agent","mode":"primary","builtIn":true,"permission":{"edit":"allow","bash":{},"webfetch":"allow"},"tools":{},"options":{}},
				{"name":"general","description":"Searches the codebase","mode":"subagent","builtIn":true,"permission":{"edit":"allow","bash":{},"webfetch":"allow"},"tools":{},"options":{}}
			]`))
		case "/tui/publish":
			_, _ = w.Write([]byte("true"))
		default:
			http.NotFound(w, r)
		}
	})
}

func propertyString(ev publishEvent, key string) string {
	s, _ := ev.Properties[key].(string)
	return s
}

func newTestClient(t *testing.T, srv *fakeServer, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(srv.handler(t))
	t.Cleanup(ts.Close)
	return NewClient("", 0, append([]Option{WithBaseURL(ts.URL)}, opts...)...)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 4096)
	assert.Equal(t, "http://localhost:4096", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("127.0.0.1", 80, WithTimeout(time.Second), WithTimeout(0))
	assert.Equal(t, "http://127.0.0.1:80", c.BaseURL())
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestPath(t *testing.T) {
	srv := &fakeServer{path: PathInfo{Worktree: "/src/app"}}
	info, err := newTestClient(t, srv).Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/src/app", info.Dir())

	assert.Equal(t, "/a", PathInfo{Directory: "/a", Worktree: "/b"}.Dir())
	assert.Empty(t, PathInfo{}.Dir())
}

func TestCommands(t *testing.T) {
	cmds, err := newTestClient(t, &fakeServer{}).Commands(context.Background())
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "compact", cmds[0].Name)
	assert.Equal(t, "Deploy $ARGUMENTS", cmds[1].Template)
	assert.Equal(t, "ops", cmds[1].Agent)
}

func TestAgents(t *testing.T) {
	agents, err := newTestClient(t, &fakeServer{}).Agents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.False(t, agents[0].Subagent())
	assert.True(t, agents[1].Subagent())
	assert.Equal(t, "Searches the codebase", agents[1].Description)
}

func TestSendPromptOrder(t *testing.T) {
	tests := []struct {
		name          string
		clear, submit bool
		want          []string
	}{
		{"append only", false, false, []string{"tui.prompt.append"}},
		{"append and submit", false, true, []string{"tui.prompt.append", CommandPromptSubmit}},
		{"clear append submit", true, true, []string{CommandPromptClear, "tui.prompt.append", CommandPromptSubmit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &fakeServer{}
			c := newTestClient(t, srv)
			require.NoError(t, c.SendPrompt(context.Background(), "Explain @src/main.go L3", tt.clear, tt.submit))

			var got []string
			for _, r := range srv.requests {
				assert.Equal(t, "/tui/publish", r.Path)
				if r.Body.Type == "tui.prompt.append" {
					assert.Equal(t, "Explain @src/main.go L3", propertyString(r.Body, "text"))
					got = append(got, r.Body.Type)
					continue
				}
				assert.Equal(t, "tui.command.execute", r.Body.Type)
				got = append(got, propertyString(r.Body, "command"))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSendPromptStopsOnFailure(t *testing.T) {
	srv := &fakeServer{failOn: CommandPromptClear}
	err := newTestClient(t, srv).SendPrompt(context.Background(), "hi", true, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "500")
	assert.Len(t, srv.requests, 1)
}

func TestBasicAuth(t *testing.T) {
	srv := &fakeServer{path: PathInfo{Directory: "/x"}}
	_, err := newTestClient(t, srv, WithPassword("", "s3cret")).Path(context.Background())
	require.NoError(t, err)
	require.Len(t, srv.requests, 1)
	assert.Equal(t, DefaultUsername, srv.requests[0].User)
	assert.Equal(t, "s3cret", srv.requests[0].Pass)

	srv = &fakeServer{path: PathInfo{Directory: "/x"}}
	_, err = newTestClient(t, srv).Path(context.Background())
	require.NoError(t, err)
	assert.Empty(t, srv.requests[0].User)
}

func TestNotFoundIsStatusError(t *testing.T) {
	c := newTestClient(t, &fakeServer{})
	err := c.doJSON(context.Background(), http.MethodGet, "/missing", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "404")
}
