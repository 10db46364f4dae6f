package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/worraphat/jarvis/agent/contract"
)

type stubResponder struct {
	reply contract.Reply
	err   error

	text    string
	history []contract.Turn
}

func (s *stubResponder) Respond(_ context.Context, text string, history []contract.Turn) (contract.Reply, error) {
	s.text = text
	s.history = history
	return s.reply, s.err
}

func newTestServer(t *testing.T, r *stubResponder) *Server {
	t.Helper()
	srv, err := New(r, Config{})
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) contract.Reply {
	t.Helper()
	var reply contract.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return reply
}

func TestNewRequiresResponder(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("want error for nil responder")
	}
}

func TestChatHappyPath(t *testing.T) {
	t.Parallel()

	stub := &stubResponder{reply: contract.Reply{
		Text:        "12 orders are affected.",
		Suggestions: []string{"Who is affected by product_1?"},
	}}
	srv := newTestServer(t, stub)

	rec := postChat(t, srv, `{"text":"product_1 is missing","history":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	reply := decodeReply(t, rec)
	if reply.Text != "12 orders are affected." || len(reply.Suggestions) != 1 {
		t.Fatalf("reply = %+v", reply)
	}
	if stub.text != "product_1 is missing" {
		t.Fatalf("responder got text %q", stub.text)
	}
	if len(stub.history) != 1 || stub.history[0].Role != contract.RoleUser {
		t.Fatalf("responder got history %v", stub.history)
	}
}

func TestChatInvalidBody(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubResponder{})

	rec := postChat(t, srv, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if reply := decodeReply(t, rec); reply.Text != "Error: invalid request body." {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestChatEmptyText(t *testing.T) {
	t.Parallel()

	stub := &stubResponder{}
	srv := newTestServer(t, stub)

	rec := postChat(t, srv, `{"text":"   "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if reply := decodeReply(t, rec); reply.Text != "Please type a message." {
		t.Fatalf("reply = %+v", reply)
	}
	if stub.text != "" {
		t.Fatal("responder was called for empty text")
	}
}

func TestChatResponderError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubResponder{err: errors.New("graph exploded")})

	rec := postChat(t, srv, `{"text":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if reply := decodeReply(t, rec); !strings.HasPrefix(reply.Text, "Error: ") {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestIndexServesWidget(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubResponder{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "/chat") {
		t.Fatal("widget markup is missing the chat endpoint")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubResponder{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatRejectsGet(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubResponder{})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
