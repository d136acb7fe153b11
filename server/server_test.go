package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/nightbats/config"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(config.Defaults(), opts)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// readUntil reads messages until one has the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding %s: %v", data, err)
		}
		if msg["type"] == want {
			return msg
		}
	}
}

// ---------- HTTP ----------

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, Options{Seed: 1})

	resp, err := http.Get(ts.URL + "/v1/health")
	if err != nil {
		t.Fatalf("GET /v1/health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["rooms"] != 0.0 {
		t.Errorf("body = %v", body)
	}
}

func TestDifficulties(t *testing.T) {
	_, ts := newTestServer(t, Options{Seed: 1})

	resp, err := http.Get(ts.URL + "/v1/difficulties")
	if err != nil {
		t.Fatalf("GET /v1/difficulties: %v", err)
	}
	defer resp.Body.Close()

	var levels []DifficultyInfo
	if err := json.NewDecoder(resp.Body).Decode(&levels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []struct {
		name       string
		maxBats    int
		killTarget int
		minMs      int64
	}{
		{"EASY", 6, 8, 7000},
		{"MEDIUM", 7, 10, 5000},
		{"HARD", 8, 15, 3000},
	}
	if len(levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(levels), len(want))
	}
	for i, w := range want {
		got := levels[i]
		if got.Name != w.name || got.MaxBats != w.maxBats || got.KillTarget != w.killTarget || got.SpawnIntervalMin != w.minMs {
			t.Errorf("level %d = %+v, want %s max %d target %d min %dms", i, got, w.name, w.maxBats, w.killTarget, w.minMs)
		}
		var sum float64
		for _, v := range got.Weights {
			sum += v
		}
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("%s weights sum to %v", got.Name, sum)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, Options{Seed: 1})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/health", nil)
	req.Header.Set("Origin", "http://renderer.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

// ---------- Websocket ----------

func TestWebsocketRoom(t *testing.T) {
	s, ts := newTestServer(t, Options{Seed: 1})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	welcome := readUntil(t, conn, "welcome")
	if id, _ := welcome["room_id"].(string); id == "" {
		t.Error("welcome without room_id")
	}
	if s.Rooms() != 1 {
		t.Errorf("Rooms() = %d, want 1", s.Rooms())
	}

	if err := conn.WriteJSON(ClientMessage{Type: MsgTap, X: -100, Y: -100}); err != nil {
		t.Fatalf("write: %v", err)
	}
	shot := readUntil(t, conn, "shot")
	if shot["accepted"] != true || shot["hit"] != false {
		t.Errorf("shot = %v, want accepted miss", shot)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, "error")

	snap := readUntil(t, conn, "snapshot")
	if snap["difficulty"] != "MEDIUM" {
		t.Errorf("difficulty = %v, want MEDIUM", snap["difficulty"])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if s.Rooms() != 0 {
		t.Errorf("Rooms() = %d after Shutdown, want 0", s.Rooms())
	}
}

func TestWebsocketOriginRejected(t *testing.T) {
	_, ts := newTestServer(t, Options{Seed: 1, AllowedOrigins: []string{"http://good.example"}})

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	if err == nil {
		t.Fatal("dial from a foreign origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}
