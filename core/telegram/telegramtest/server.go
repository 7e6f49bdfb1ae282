// Package telegramtest runs a fake Bot API server for handler tests.
package telegramtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"
)

// Token is the bot token the fake server accepts.
const Token = "1:test"

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]any
}

// Str returns a parameter as a string.
func (c Call) Str(key string) string {
	switch v := c.Params[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

type failure struct {
	code int
	desc string
}

// Server records calls and answers them with minimal valid results.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	nextID   int
	failures map[string]failure
}

// NewServer starts a fake Bot API closed on test cleanup.
func NewServer(t testing.TB) *Server {
	s := &Server{nextID: 100, failures: make(map[string]failure)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Bot returns an offline bot talking to the fake server.
func (s *Server) Bot(t testing.TB) *tele.Bot {
	b, err := tele.NewBot(tele.Settings{
		URL:         s.URL,
		Token:       Token,
		Offline:     true,
		Synchronous: true,
	})
	if err != nil {
		t.Fatalf("telegramtest: new bot: %v", err)
	}
	return b
}

// Fail makes every later call to method return a Bot API error.
func (s *Server) Fail(method string, code int, desc string) {
	s.mu.Lock()
	s.failures[method] = failure{code: code, desc: desc}
	s.mu.Unlock()
}

// Calls returns recorded calls, optionally filtered by method.
func (s *Server) Calls(methods ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if len(methods) == 0 || contains(methods, c.Method) {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (s *Server) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	params := map[string]any{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&params)
	} else {
		// ParseMultipartForm fills r.Form for urlencoded bodies too
		_ = r.ParseMultipartForm(1 << 20)
		for k, v := range r.Form {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Params: params})
	fail, failing := s.failures[method]
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		fmt.Fprintf(w, `{"ok":false,"error_code":%d,"description":%q}`, fail.code, fail.desc)
		return
	}

	var result any = true
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "test", "username": "test_bot"}
	case "getFile":
		fileID, _ := params["file_id"].(string)
		result = map[string]any{"file_id": fileID, "file_unique_id": "u" + fileID, "file_path": "photos/" + fileID + ".jpg"}
	case "sendMessage", "sendPhoto", "editMessageCaption", "editMessageText":
		result = message(method, id, params)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func message(method string, id int, params map[string]any) map[string]any {
	msg := map[string]any{"message_id": id, "date": 0}
	if mid, err := strconv.Atoi(fmt.Sprint(params["message_id"])); err == nil {
		msg["message_id"] = mid
	}
	chatID, _ := strconv.ParseInt(fmt.Sprint(params["chat_id"]), 10, 64)
	msg["chat"] = map[string]any{"id": chatID, "type": "private"}
	if text, ok := params["text"]; ok {
		msg["text"] = text
	}
	if caption, ok := params["caption"]; ok {
		msg["caption"] = caption
	}
	// telebot reads the sent photo back from the result
	if method == "sendPhoto" {
		fileID := fmt.Sprint(params["photo"])
		msg["photo"] = []map[string]any{{"file_id": fileID, "file_unique_id": "u" + fileID, "width": 1, "height": 1}}
	}
	return msg
}
