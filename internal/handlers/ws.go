// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blitzuno/blitzuno/internal/auth"
	"github.com/blitzuno/blitzuno/internal/game"
	"github.com/blitzuno/blitzuno/internal/models"
	"github.com/blitzuno/blitzuno/internal/room"
)

// clientMessage is the single envelope for every inbound frame. Unused fields
// stay zero for message types that do not carry them.
type clientMessage struct {
	Type        string                 `json:"type"`
	ActionID    string                 `json:"actionId,omitempty"`
	RoomCode    string                 `json:"roomCode,omitempty"`
	DisplayName string                 `json:"displayName,omitempty"`
	AvatarRef   string                 `json:"avatarRef,omitempty"`
	Password    string                 `json:"password,omitempty"`
	Token       string                 `json:"token,omitempty"`
	CardID      string                 `json:"cardId,omitempty"`
	ChosenColor string                 `json:"chosenColor,omitempty"`
	TargetID    string                 `json:"targetId,omitempty"`
	TurnSeq     int                    `json:"turnSeq,omitempty"`
	Text        string                 `json:"text,omitempty"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

// session tracks one websocket's room membership across its lifetime.
type session struct {
	store    *room.Store
	ws       *websocket.Conn
	conn     *room.Conn
	room     *room.Room
	playerID uuid.UUID
	logger   *logrus.Logger
}

// RoomWSHandler upgrades /ws connections and runs the read loop. A fresh
// connection belongs to no room; the first create_room, join_room, or
// reconnect_room message binds it.
func RoomWSHandler(logger *logrus.Logger, store *room.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"blitzuno"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "blitzuno" {
			c.Close(BadSubprotocolError, "client must speak the blitzuno subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := room.NewConn(uuid.Nil, cancel)
		sess := &session{store: store, ws: c, conn: conn, logger: logger}

		logger.Infof("websocket connected from %s", remoteAddr)
		go writePump(ctx, c, conn, remoteAddr, logger)
		readPump(ctx, c, sess)

		if sess.room != nil {
			sess.room.Disconnect(sess.playerID)
		}
		logger.Infof("websocket from %s closed", remoteAddr)
	}
}

// readPump consumes frames until the connection dies. Each message is handled
// to completion before the next read; per-room ordering comes from the room's
// own lock.
func readPump(ctx context.Context, c *websocket.Conn, sess *session) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return
			}
			if !strings.Contains(err.Error(), "context canceled") {
				sess.logger.Warnf("websocket read error for %s: %v", sess.playerID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.conn.WriteError("invalid JSON")
			continue
		}
		sess.handle(msg)
	}
}

func (s *session) handle(msg clientMessage) {
	switch msg.Type {
	case "create_room":
		s.createRoom(msg)
	case "join_room":
		s.joinRoom(msg)
	case "reconnect_room":
		s.reconnectRoom(msg)
	case "ping":
		s.conn.Write(map[string]interface{}{
			"type":       "pong",
			"serverTime": time.Now().UTC().UnixMilli(),
		})
	default:
		s.handleInRoom(msg)
	}
}

func (s *session) handleInRoom(msg clientMessage) {
	if s.room == nil {
		s.writeErrorCode(game.CodeRoomNotFound, "join a room first")
		return
	}
	switch msg.Type {
	case "start_game", "play_card", "draw_card", "call_uno", "catch_uno",
		"send_chat", "update_room_settings":
		// Every actionId-bearing request goes through the room's dedup and
		// ack path, so a retry replays the original outcome.
		act := room.Action{
			Type:        msg.Type,
			ActionID:    msg.ActionID,
			ChosenColor: models.Color(msg.ChosenColor),
			TurnSeq:     msg.TurnSeq,
			Text:        msg.Text,
			Settings:    msg.Settings,
		}
		if msg.CardID != "" {
			id, err := uuid.Parse(msg.CardID)
			if err != nil {
				s.writeErrorCode(game.CodeBadRequest, "invalid cardId")
				return
			}
			act.CardID = id
		}
		if msg.TargetID != "" {
			id, err := uuid.Parse(msg.TargetID)
			if err != nil {
				s.writeErrorCode(game.CodeBadRequest, "invalid targetId")
				return
			}
			act.TargetID = id
		}
		s.room.HandleAction(s.playerID, act)
	case "set_avatar":
		if err := s.room.SetAvatar(s.playerID, msg.AvatarRef); err != nil {
			s.writeErrorCode(game.CodeOf(err), err.Error())
		}
	default:
		s.writeErrorCode(game.CodeBadRequest, "unknown message type: "+msg.Type)
	}
}

func (s *session) createRoom(msg clientMessage) {
	if s.room != nil {
		s.writeErrorCode(game.CodeBadRequest, "already in a room")
		return
	}
	settings := models.DefaultRoomSettings()
	if msg.Settings != nil {
		if err := settings.Update(msg.Settings); err != nil {
			s.writeErrorCode(game.CodeBadRequest, err.Error())
			return
		}
	}
	settings.Password = msg.Password

	rm, err := s.store.Create(settings)
	if err != nil {
		s.writeErrorCode(game.CodeBadRequest, err.Error())
		return
	}
	s.seat(rm, msg, msg.Password)
}

func (s *session) joinRoom(msg clientMessage) {
	if s.room != nil {
		s.writeErrorCode(game.CodeBadRequest, "already in a room")
		return
	}
	rm := s.store.Get(strings.ToUpper(msg.RoomCode))
	if rm == nil {
		s.writeErrorCode(game.CodeRoomNotFound, "no such room")
		return
	}
	s.seat(rm, msg, msg.Password)
}

// seat joins the player to the room and delivers room_joined with the
// one-time reconnect token.
func (s *session) seat(rm *room.Room, msg clientMessage, password string) {
	name := strings.TrimSpace(msg.DisplayName)
	if name == "" {
		name = "Player"
	}
	p, err := rm.Join(s.conn, name, password)
	if err != nil {
		s.writeErrorCode(game.CodeOf(err), err.Error())
		return
	}
	s.room = rm
	s.playerID = p.ID
	if msg.AvatarRef != "" {
		_ = rm.SetAvatar(p.ID, msg.AvatarRef)
	}

	token, err := auth.IssueRoomToken(rm.Code, p.ID.String())
	if err != nil {
		s.logger.Errorf("issue reconnect token for %s: %v", p.ID, err)
	}
	s.conn.Write(map[string]interface{}{
		"type":        "room_joined",
		"roomCode":    rm.Code,
		"playerId":    p.ID,
		"secretToken": token,
		"settings":    rm.Settings(),
	})
}

func (s *session) reconnectRoom(msg clientMessage) {
	if s.room != nil {
		s.writeErrorCode(game.CodeBadRequest, "already in a room")
		return
	}
	code, playerIDStr, err := auth.VerifyRoomToken(msg.Token)
	if err != nil {
		s.ws.Close(BadTokenError, "invalid reconnect token")
		return
	}
	playerID, err := uuid.Parse(playerIDStr)
	if err != nil {
		s.ws.Close(BadTokenError, "invalid reconnect token")
		return
	}
	rm := s.store.Get(code)
	if rm == nil {
		s.ws.Close(InvalidRoomError, "room no longer exists")
		return
	}
	if err := rm.Reconnect(s.conn, playerID); err != nil {
		s.writeErrorCode(game.CodeOf(err), err.Error())
		return
	}
	s.room = rm
	s.playerID = playerID
	s.conn.Write(map[string]interface{}{
		"type":     "room_joined",
		"roomCode": rm.Code,
		"playerId": playerID,
		"resumed":  true,
		"settings": rm.Settings(),
	})
}

func (s *session) writeErrorCode(code game.ErrorCode, detail string) {
	s.conn.Write(map[string]interface{}{
		"type":    "error",
		"code":    string(code),
		"message": detail,
	})
}

// writePump drains the connection's OutChan onto the wire and keeps the
// connection alive with periodic pings. It logs by remote address: the room
// layer rebinds conn.PlayerID under its own lock, which the pump does not take.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Conn, remoteAddr string, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer func() {
		_ = c.Close(websocket.StatusGoingAway, "write pump stopping")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for %s: %v", remoteAddr, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for %s: %v", remoteAddr, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for %s, assuming disconnect: %v", remoteAddr, err)
				return
			}
		}
	}
}
