package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"dual-dm/internal/config"
	"dual-dm/internal/db"

	"gorm.io/gorm"
)

const (
	testFastModel  = "fast-model"
	testSmartModel = "smart-model"
)

// fakeOpenAI is a minimal chat-completions endpoint. Replies are keyed
// by model name; models in the failing set return 500.
type fakeOpenAI struct {
	mu        sync.Mutex
	responses map[string]string
	failing   map[string]bool
	requests  []fakeChatRequest
}

type fakeChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type fakeChatRequest struct {
	Model    string            `json:"model"`
	Messages []fakeChatMessage `json:"messages"`
}

func newFakeOpenAI() *fakeOpenAI {
	return &fakeOpenAI{
		responses: make(map[string]string),
		failing:   make(map[string]bool),
	}
}

func (f *fakeOpenAI) respond(model, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[model] = text
}

func (f *fakeOpenAI) fail(model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[model] = true
}

func (f *fakeOpenAI) requestsForModel(model string) []fakeChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeChatRequest
	for _, req := range f.requests {
		if req.Model == model {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeOpenAI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req fakeChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		failing := f.failing[req.Model]
		reply, ok := f.responses[req.Model]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
			return
		}
		if !ok {
			reply = "The story continues."
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	})
	return mux
}

func newTestConfig(backendURL string) config.Config {
	cfg := config.Default()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = backendURL + "/v1"
	cfg.FastModel = testFastModel
	cfg.SmartModel = testSmartModel
	return cfg
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func newTestEnv(t *testing.T) (*httptest.Server, *fakeOpenAI, *gorm.DB) {
	t.Helper()
	fake := newFakeOpenAI()
	backend := httptest.NewServer(fake.handler())
	t.Cleanup(backend.Close)

	conn := newTestDB(t)
	srv := New(conn, newTestConfig(backend.URL))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, fake, conn
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var body []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode list body: %v", err)
	}
	return body
}

func startGame(t *testing.T, ts *httptest.Server, systemPrompt string) uint {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/start", map[string]string{
		"systemPrompt": systemPrompt,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	id, ok := body["gameId"].(float64)
	if !ok {
		t.Fatalf("expected numeric gameId, got %#v", body["gameId"])
	}
	return uint(id)
}
