package server

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/core"
	"github.com/pthm-cable/nightbats/policy"
	"github.com/pthm-cable/nightbats/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Room is one remote player's game. The match is owned by the run goroutine;
// the read pump feeds it through inbox and the write pump drains send.
type Room struct {
	id            string
	match         *core.Match
	settings      *config.SettingsStore
	tick          time.Duration
	snapshotEvery int
	ticks         int
	log           *slog.Logger

	send      chan []byte
	inbox     chan ClientMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewRoom creates a room with its own settings and simulated clock.
func NewRoom(cfg *config.Config, seed int64) *Room {
	id := uuid.New().String()
	settings := config.NewSettingsStore(cfg.Settings)
	every := cfg.Server.SnapshotEvery
	if every < 1 {
		every = 1
	}

	r := &Room{
		id:            id,
		settings:      settings,
		tick:          cfg.Derived.ServerTick,
		snapshotEvery: every,
		log:           slog.With("room", id),
		send:          make(chan []byte, sendBuffer),
		inbox:         make(chan ClientMessage, sendBuffer),
		done:          make(chan struct{}),
	}
	r.match = core.NewMatch(cfg, settings, core.MatchOptions{Seed: seed, Start: time.Now()})
	r.match.OnFinish(func(s session.Summary) {
		r.emit(FinishedMessage{Type: "finished", Summary: s})
	})
	return r
}

// ID returns the room's identifier.
func (r *Room) ID() string { return r.id }

// Close stops the room. Safe to call more than once and from any goroutine.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// welcome queues the greeting. Call before run.
func (r *Room) welcome(cfg *config.Config) {
	names := make([]string, 0, policy.DifficultyCount)
	for _, d := range policy.AllDifficulties() {
		names = append(names, d.String())
	}
	r.emit(Welcome{
		Type:         "welcome",
		RoomID:       r.id,
		ScreenWidth:  cfg.Screen.Width,
		ScreenHeight: cfg.Screen.Height,
		TickMs:       r.tick.Milliseconds(),
		Difficulties: names,
	})
}

// run drives the match until Close. It owns the match and closes send on exit.
func (r *Room) run() {
	ticker := time.NewTicker(r.tick)
	defer func() {
		ticker.Stop()
		r.match.Close()
		close(r.send)
		r.log.Info("room_closed", "sessions", r.match.Sessions())
	}()

	r.match.Start()
	r.emit(r.match.Snapshot())

	for {
		select {
		case msg := <-r.inbox:
			r.handle(msg)
		case <-ticker.C:
			r.step()
		case <-r.done:
			return
		}
	}
}

// step advances the match by one server tick.
func (r *Room) step() {
	r.match.Step(r.tick)
	r.ticks++
	if r.ticks%r.snapshotEvery == 0 {
		r.emit(r.match.Snapshot())
	}
}

// handle applies one client command.
func (r *Room) handle(msg ClientMessage) {
	switch msg.Type {
	case MsgTap:
		r.emitShot(r.match.Tap(msg.X, msg.Y))
	case MsgFire:
		r.emitShot(r.match.Fire())
	case MsgDifficulty:
		d, ok := parseDifficulty(msg.Value)
		if !ok {
			r.emit(ErrorMessage{Type: "error", Message: "unknown difficulty " + msg.Value})
			return
		}
		r.settings.SetDifficulty(d)
		r.emit(r.match.Snapshot())
	case MsgRestart:
		r.match.Start()
		r.emit(r.match.Snapshot())
	default:
		r.emit(ErrorMessage{Type: "error", Message: "unknown message type " + msg.Type})
	}
}

func (r *Room) emitShot(res session.ShotResult) {
	r.emit(ShotMessage{
		Type:     "shot",
		Accepted: res.Accepted,
		Hit:      res.Hit,
		Points:   res.Points,
		Stamina:  res.Stamina,
		Outcome:  res.Outcome,
	})
}

// emit queues v for the write pump, dropping it if the client is too slow.
func (r *Room) emit(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Error("failed to encode message", "error", err)
		return
	}
	select {
	case r.send <- data:
	default:
		r.log.Warn("send buffer full, dropping message")
	}
}

// readPump forwards client commands to the run goroutine.
func (r *Room) readPump(conn *websocket.Conn) {
	defer func() {
		r.Close()
		conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.log.Warn("read error", "error", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = ClientMessage{Type: "malformed"}
		}
		select {
		case r.inbox <- msg:
		case <-r.done:
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive with pings.
func (r *Room) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-r.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseDifficulty accepts only the three level names, case-insensitively.
func parseDifficulty(s string) (policy.Difficulty, bool) {
	d := policy.ParseDifficulty(s)
	return d, strings.EqualFold(strings.TrimSpace(s), d.String())
}
