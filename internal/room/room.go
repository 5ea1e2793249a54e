// internal/room/room.go
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/blitzuno/blitzuno/internal/auth"
	"github.com/blitzuno/blitzuno/internal/game"
	"github.com/blitzuno/blitzuno/internal/models"
)

const (
	// gcGrace is how long a room with no connected humans survives before it
	// is torn down.
	gcGrace = 5 * time.Minute

	// clockSyncInterval paces the periodic authoritative clock broadcast.
	clockSyncInterval = time.Second

	chatHistoryLimit = 100
)

// ActionRecord is the append-only log entry published for every successful
// mutating action. The historian drains these into postgres.
type ActionRecord struct {
	RoomCode string    `json:"room_code"`
	GameID   string    `json:"game_id"`
	PlayerID string    `json:"player_id"`
	Type     string    `json:"type"`
	ActionID string    `json:"action_id,omitempty"`
	TurnSeq  int       `json:"turn_seq"`
	Payload  string    `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

// MatchRecord summarizes a finished game for persistence.
type MatchRecord struct {
	RoomCode  string    `json:"room_code"`
	GameID    string    `json:"game_id"`
	WinnerID  string    `json:"winner_id,omitempty"`
	EndReason string    `json:"end_reason"`
	Players   []string  `json:"players"`
	EndedAt   time.Time `json:"ended_at"`
}

// ActionSink receives records for asynchronous persistence. A nil sink
// disables logging without changing room behavior.
type ActionSink interface {
	PublishAction(ctx context.Context, rec ActionRecord) error
	PublishMatch(ctx context.Context, rec MatchRecord) error
}

// Action is one serialized actionId-bearing request: a gameplay move or a
// lobby operation. TurnSeq, when set, pins the request to the turn the client
// saw; a mismatch rejects without mutating.
type Action struct {
	Type        string
	ActionID    string
	CardID      uuid.UUID
	ChosenColor models.Color
	TargetID    uuid.UUID
	TurnSeq     int
	Text        string                 // send_chat
	Settings    map[string]interface{} // update_room_settings
}

// Room is one live game room. All state behind mu; every externally visible
// mutation (joins, actions, timer fires, AI moves) funnels through it, which
// is the room's total ordering.
type Room struct {
	Code string

	mu           sync.Mutex
	hostID       uuid.UUID
	settings     models.RoomSettings
	passwordHash string
	players      []*models.Player
	game         *game.Game
	conns        map[uuid.UUID]*Conn
	dedup        *actionCache
	chat         []ChatMessage

	deadlineTimer *time.Timer
	aiTimer       *time.Timer
	gcTimer       *time.Timer
	syncStop      chan struct{}
	closed        bool

	// Sink is optional; set by the server at room creation.
	Sink ActionSink

	// OnEmpty is invoked (outside the lock) when the room is garbage
	// collected, so the store can forget it.
	OnEmpty func(code string)
}

// NewRoom builds an empty room. A non-empty settings password is hashed and
// required from every joiner.
func NewRoom(code string, settings models.RoomSettings) (*Room, error) {
	r := &Room{
		Code:     code,
		settings: settings,
		conns:    make(map[uuid.UUID]*Conn),
		dedup:    newActionCache(),
	}
	if settings.Password != "" {
		hash, err := auth.HashRoomPassword(settings.Password)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		r.passwordHash = hash
		r.settings.RequirePassword = true
		r.settings.Password = ""
	}
	return r, nil
}

// Join seats a new player. Only legal while no game is in progress. The first
// joiner becomes the host.
func (r *Room) Join(conn *Conn, displayName, password string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, &game.RuleError{Code: game.CodeRoomNotFound}
	}
	if r.game != nil {
		// Seats are fixed once a match has been dealt; latecomers can only
		// reconnect into an existing seat.
		return nil, &game.RuleError{Code: game.CodeWrongPhase}
	}
	if r.humanCount() >= r.settings.MaxPlayers {
		return nil, &game.RuleError{Code: game.CodeRoomFull}
	}
	if r.passwordHash != "" {
		ok, err := auth.CompareRoomPassword(password, r.passwordHash)
		if err != nil || !ok {
			return nil, &game.RuleError{Code: game.CodeBadPassword}
		}
	}

	id, _ := uuid.NewRandom()
	p := &models.Player{
		ID:          id,
		DisplayName: displayName,
		Seat:        len(r.players),
		Connected:   true,
	}
	r.players = append(r.players, p)
	if r.hostID == uuid.Nil {
		r.hostID = p.ID
	}
	conn.PlayerID = p.ID
	r.conns[p.ID] = conn
	r.cancelGCLocked()

	log.Infof("room %s: %s joined as seat %d", r.Code, p.ID, p.Seat)
	r.broadcastRoomUpdateLocked()
	return p, nil
}

// Reconnect swaps in a new connection for an existing seat. Never mutates
// game state; the rejoining client receives the current snapshot and the
// retained chat history.
func (r *Room) Reconnect(conn *Conn, playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return &game.RuleError{Code: game.CodeRoomNotFound}
	}
	p := r.playerByID(playerID)
	if p == nil || p.IsAI {
		return &game.RuleError{Code: game.CodePlayerNotFound}
	}

	if old, ok := r.conns[playerID]; ok && old != conn {
		if old.Cancel != nil {
			old.Cancel()
		}
	}
	conn.PlayerID = playerID
	r.conns[playerID] = conn
	p.Connected = true
	r.cancelGCLocked()

	log.Infof("room %s: %s reconnected", r.Code, playerID)
	if r.game != nil {
		conn.Write(map[string]interface{}{
			"type": "game_state",
			"game": r.game.ViewFor(playerID),
		})
	}
	if len(r.chat) > 0 {
		conn.Write(map[string]interface{}{
			"type":     "chat_history",
			"messages": append([]ChatMessage(nil), r.chat...),
		})
	}
	r.broadcastRoomUpdateLocked()
	return nil
}

// Disconnect marks the seat offline and drops its connection. The seat stays
// in the turn rotation; its clock keeps running. When the last human leaves,
// the GC grace timer arms.
func (r *Room) Disconnect(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	conn, ok := r.conns[playerID]
	if !ok {
		return
	}
	delete(r.conns, playerID)
	if conn.Cancel != nil {
		conn.Cancel()
	}
	if p := r.playerByID(playerID); p != nil {
		p.Connected = false
	}
	log.Infof("room %s: %s disconnected", r.Code, playerID)

	if len(r.conns) == 0 {
		r.armGCLocked()
	}
	r.broadcastRoomUpdateLocked()
}

// UpdateSettings applies a host-only partial settings update while waiting.
func (r *Room) UpdateSettings(playerID uuid.UUID, partial map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateSettingsLocked(playerID, partial)
}

func (r *Room) updateSettingsLocked(playerID uuid.UUID, partial map[string]interface{}) error {
	if partial == nil {
		return &game.RuleError{Code: game.CodeBadRequest}
	}
	if playerID != r.hostID {
		return &game.RuleError{Code: game.CodeNotHost}
	}
	if r.game != nil && r.game.Phase == game.PhasePlaying {
		return &game.RuleError{Code: game.CodeWrongPhase}
	}
	if err := r.settings.Update(partial); err != nil {
		return err
	}
	r.broadcastRoomUpdateLocked()
	return nil
}

// Settings returns a copy of the current room settings.
func (r *Room) Settings() models.RoomSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// StartGame begins a match (host only). AI seats are filled per settings
// before dealing. Starting again after a finished game deals a fresh match
// with the same seats.
func (r *Room) StartGame(playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startGameLocked(playerID)
}

func (r *Room) startGameLocked(playerID uuid.UUID) error {
	if playerID != r.hostID {
		return &game.RuleError{Code: game.CodeNotHost}
	}
	if r.game != nil && r.game.Phase == game.PhasePlaying {
		return &game.RuleError{Code: game.CodeWrongPhase}
	}

	r.ensureAISeatsLocked()
	if len(r.players) < 2 {
		return &game.RuleError{Code: game.CodeTooFewPlayers}
	}

	g := game.NewGame(r.settings, r.players)
	if err := g.Start(); err != nil {
		return err
	}
	r.game = g
	r.dedup = newActionCache()

	r.broadcastRoomUpdateLocked()
	r.broadcastGameStateLocked()
	r.broadcastClockSyncLocked()

	if g.Phase == game.PhaseFinished {
		r.finishLocked()
		return nil
	}
	r.startClockSyncLocked()
	r.armDeadlineLocked()
	r.scheduleAILocked()
	return nil
}

// ensureAISeatsLocked rebuilds the AI tail of the seat list to match the
// configured count, capped by room capacity. Assumes lock is held.
func (r *Room) ensureAISeatsLocked() {
	humans := r.players[:0:0]
	for _, p := range r.players {
		if !p.IsAI {
			humans = append(humans, p)
		}
	}
	r.players = humans
	want := r.settings.AISeats
	if len(r.players)+want > r.settings.MaxPlayers {
		want = r.settings.MaxPlayers - len(r.players)
	}
	for i := 0; i < want; i++ {
		id, _ := uuid.NewRandom()
		r.players = append(r.players, &models.Player{
			ID:          id,
			DisplayName: fmt.Sprintf("Bot %d", i+1),
			IsAI:        true,
			Connected:   true,
		})
	}
	for i, p := range r.players {
		p.Seat = i
	}
}

// HandleAction is the single entry point for actionId-bearing requests:
// gameplay moves plus start_game, send_chat, and update_room_settings. The
// outcome is delivered as an action_ack to the acting player; successful
// gameplay mutations additionally broadcast fresh state to everyone. Retries
// carrying a known actionId replay the original ack untouched.
func (r *Room) HandleAction(playerID uuid.UUID, act Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if act.ActionID != "" {
		if cached := r.dedup.Lookup(act.ActionID); cached != nil {
			r.writeToLocked(playerID, cached)
			return
		}
	}

	gameplay := isGameplayAction(act.Type)

	// An already-expired clock is settled before a gameplay request is
	// judged, so the request is evaluated against post-timeout state.
	if gameplay && r.game != nil && r.game.Phase == game.PhasePlaying && r.game.Clock.ActiveRemaining() <= 0 {
		r.timeoutLocked()
	}

	err := r.applyActionLocked(playerID, act)
	ack := map[string]interface{}{
		"type":     "action_ack",
		"actionId": act.ActionID,
		"action":   act.Type,
		"ok":       err == nil,
	}
	if r.game != nil {
		ack["turnSeq"] = r.game.TurnSeq
	}
	if err != nil {
		ack["code"] = string(game.CodeOf(err))
	}
	if act.ActionID != "" {
		r.dedup.Store(act.ActionID, ack)
	}
	r.writeToLocked(playerID, ack)

	if err != nil || !gameplay {
		return
	}
	r.afterMutationLocked(playerID, act)
}

func isGameplayAction(typ string) bool {
	switch typ {
	case "play_card", "draw_card", "call_uno", "catch_uno":
		return true
	}
	return false
}

// applyActionLocked dispatches to the engine or to the room-level operation.
// Assumes lock is held.
func (r *Room) applyActionLocked(playerID uuid.UUID, act Action) error {
	switch act.Type {
	case "start_game":
		return r.startGameLocked(playerID)
	case "send_chat":
		return r.sendChatLocked(playerID, act.Text)
	case "update_room_settings":
		return r.updateSettingsLocked(playerID, act.Settings)
	}

	g := r.game
	if g == nil {
		return &game.RuleError{Code: game.CodeWrongPhase}
	}
	if act.TurnSeq > 0 && act.TurnSeq != g.TurnSeq {
		return &game.RuleError{Code: game.CodeStaleTurn}
	}
	switch act.Type {
	case "play_card":
		return g.PlayCard(playerID, act.CardID, act.ChosenColor)
	case "draw_card":
		_, err := g.DrawCard(playerID)
		return err
	case "call_uno":
		return g.CallUno(playerID)
	case "catch_uno":
		return g.CatchUno(playerID, act.TargetID)
	default:
		return &game.RuleError{Code: game.CodeBadRequest}
	}
}

// afterMutationLocked runs the common post-success path: broadcast, log,
// rearm timers, schedule AI, settle a finished game. Assumes lock is held.
func (r *Room) afterMutationLocked(playerID uuid.UUID, act Action) {
	g := r.game
	r.broadcastGameStateLocked()
	r.broadcastClockSyncLocked()
	r.publishActionLocked(playerID, act)

	if g.Phase == game.PhaseFinished {
		r.finishLocked()
		return
	}
	r.armDeadlineLocked()
	r.scheduleAILocked()
}

// SendChat appends to the room's bounded chat log and broadcasts it.
func (r *Room) SendChat(playerID uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sendChatLocked(playerID, text)
}

func (r *Room) sendChatLocked(playerID uuid.UUID, text string) error {
	if text == "" {
		return &game.RuleError{Code: game.CodeBadRequest}
	}
	p := r.playerByID(playerID)
	if p == nil {
		return &game.RuleError{Code: game.CodePlayerNotFound}
	}
	msg := ChatMessage{
		PlayerID:    p.ID,
		DisplayName: p.DisplayName,
		Text:        text,
		SentAt:      time.Now().UTC(),
	}
	r.chat = append(r.chat, msg)
	if len(r.chat) > chatHistoryLimit {
		r.chat = r.chat[len(r.chat)-chatHistoryLimit:]
	}
	r.broadcastLocked(map[string]interface{}{
		"type":    "chat",
		"message": msg,
	})
	return nil
}

// SetAvatar points a seat at an uploaded avatar blob.
func (r *Room) SetAvatar(playerID uuid.UUID, avatarRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerByID(playerID)
	if p == nil {
		return &game.RuleError{Code: game.CodePlayerNotFound}
	}
	p.AvatarRef = avatarRef
	r.broadcastRoomUpdateLocked()
	return nil
}

// HostID returns the current host seat.
func (r *Room) HostID() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// --- timers -----------------------------------------------------------------

// armDeadlineLocked schedules the flag-fall for the active seat. The fire
// validates against TurnSeq so a timer from a turn that already ended is a
// no-op. Assumes lock is held.
func (r *Room) armDeadlineLocked() {
	if r.deadlineTimer != nil {
		r.deadlineTimer.Stop()
		r.deadlineTimer = nil
	}
	g := r.game
	if g == nil || g.Phase != game.PhasePlaying {
		return
	}
	remaining := g.Clock.ActiveRemaining()
	seq := g.TurnSeq
	r.deadlineTimer = time.AfterFunc(time.Duration(remaining)*time.Millisecond, func() {
		r.onDeadline(seq)
	})
}

func (r *Room) onDeadline(turnSeq int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if r.closed || g == nil || g.Phase != game.PhasePlaying || g.TurnSeq != turnSeq {
		return
	}
	if g.Clock.ActiveRemaining() > 0 {
		// Timer drift; the seat still has balance.
		r.armDeadlineLocked()
		return
	}
	r.timeoutLocked()
}

// timeoutLocked applies the configured timeout policy to the flagged seat and
// broadcasts the outcome. Assumes lock is held and the active clock is zero.
func (r *Room) timeoutLocked() {
	g := r.game
	flagged, policy := g.ApplyTimeout()
	if flagged == uuid.Nil {
		return
	}
	r.broadcastLocked(map[string]interface{}{
		"type":     "time_out",
		"playerId": flagged,
		"policy":   policy,
	})
	r.broadcastGameStateLocked()
	r.broadcastClockSyncLocked()
	r.publishActionLocked(flagged, Action{Type: "time_out"})

	if g.Phase == game.PhaseFinished {
		r.finishLocked()
		return
	}
	r.armDeadlineLocked()
	r.scheduleAILocked()
}

// scheduleAILocked arms the AI move timer when an AI seat is on turn.
// Assumes lock is held.
func (r *Room) scheduleAILocked() {
	if r.aiTimer != nil {
		r.aiTimer.Stop()
		r.aiTimer = nil
	}
	g := r.game
	if g == nil || g.Phase != game.PhasePlaying {
		return
	}
	cur := g.CurrentPlayer()
	if cur == nil || !cur.IsAI {
		return
	}
	seq := g.TurnSeq
	id := cur.ID
	r.aiTimer = time.AfterFunc(game.AIThinkDelay(g.RNG()), func() {
		r.onAITurn(id, seq)
	})
}

func (r *Room) onAITurn(playerID uuid.UUID, turnSeq int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	if r.closed || g == nil || g.Phase != game.PhasePlaying || g.TurnSeq != turnSeq {
		return
	}
	cur := g.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return
	}

	move := g.ChooseAIMove(playerID)
	var err error
	actType := "play_card"
	if move.Draw {
		actType = "draw_card"
		_, err = g.DrawCard(playerID)
	} else {
		err = g.PlayCard(playerID, move.CardID, move.ChosenColor)
	}
	if err != nil {
		log.Warnf("room %s: AI %s move rejected: %v", r.Code, playerID, err)
		_, err = g.DrawCard(playerID)
		if err != nil {
			return
		}
		actType = "draw_card"
	}
	// Bots always declare; they are never catchable.
	if g.UnoWindow != nil {
		if wp := g.PlayerByID(g.UnoWindow.PlayerID); wp != nil && wp.IsAI {
			_ = g.CallUno(wp.ID)
		}
	}
	r.afterMutationLocked(playerID, Action{Type: actType})
}

// armGCLocked starts the empty-room teardown countdown. Assumes lock is held.
func (r *Room) armGCLocked() {
	if r.gcTimer != nil {
		r.gcTimer.Stop()
	}
	r.gcTimer = time.AfterFunc(gcGrace, r.onGC)
}

func (r *Room) cancelGCLocked() {
	if r.gcTimer != nil {
		r.gcTimer.Stop()
		r.gcTimer = nil
	}
}

func (r *Room) onGC() {
	r.mu.Lock()
	if r.closed || len(r.conns) > 0 {
		r.mu.Unlock()
		return
	}
	onEmpty := r.OnEmpty
	code := r.Code
	r.closeLocked()
	r.mu.Unlock()

	log.Infof("room %s: garbage collected after %s without humans", code, gcGrace)
	if onEmpty != nil {
		onEmpty(code)
	}
}

// closeLocked stops every timer and connection. Assumes lock is held.
func (r *Room) closeLocked() {
	r.closed = true
	if r.deadlineTimer != nil {
		r.deadlineTimer.Stop()
	}
	if r.aiTimer != nil {
		r.aiTimer.Stop()
	}
	if r.gcTimer != nil {
		r.gcTimer.Stop()
	}
	r.stopClockSyncLocked()
	for _, c := range r.conns {
		if c.Cancel != nil {
			c.Cancel()
		}
	}
	r.conns = make(map[uuid.UUID]*Conn)
}

// finishLocked settles a game that just ended: timers down, clock sync loop
// stopped, match record published. Assumes lock is held.
func (r *Room) finishLocked() {
	if r.deadlineTimer != nil {
		r.deadlineTimer.Stop()
		r.deadlineTimer = nil
	}
	if r.aiTimer != nil {
		r.aiTimer.Stop()
		r.aiTimer = nil
	}
	r.stopClockSyncLocked()

	g := r.game
	if r.Sink == nil || g == nil {
		return
	}
	rec := MatchRecord{
		RoomCode:  r.Code,
		GameID:    g.ID.String(),
		EndReason: g.EndReason,
		EndedAt:   time.Now().UTC(),
	}
	if g.WinnerID != uuid.Nil {
		rec.WinnerID = g.WinnerID.String()
	}
	for _, p := range g.Players {
		rec.Players = append(rec.Players, p.ID.String())
	}
	sink := r.Sink
	go func() {
		if err := sink.PublishMatch(context.Background(), rec); err != nil {
			log.Warnf("room %s: publish match record: %v", rec.RoomCode, err)
		}
	}()
}

// --- clock sync -------------------------------------------------------------

func (r *Room) startClockSyncLocked() {
	r.stopClockSyncLocked()
	stop := make(chan struct{})
	r.syncStop = stop
	go r.clockSyncLoop(stop)
}

func (r *Room) stopClockSyncLocked() {
	if r.syncStop != nil {
		close(r.syncStop)
		r.syncStop = nil
	}
}

func (r *Room) clockSyncLoop(stop chan struct{}) {
	ticker := time.NewTicker(clockSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.closed || r.game == nil || r.game.Phase != game.PhasePlaying {
				r.mu.Unlock()
				return
			}
			r.broadcastClockSyncLocked()
			r.mu.Unlock()
		}
	}
}

// --- broadcasts -------------------------------------------------------------

// broadcastLocked fans a message to every live connection. Assumes lock is
// held; Write never blocks, so no I/O happens in the critical section.
func (r *Room) broadcastLocked(msg map[string]interface{}) {
	for _, c := range r.conns {
		c.Write(msg)
	}
}

func (r *Room) writeToLocked(playerID uuid.UUID, msg map[string]interface{}) {
	if c, ok := r.conns[playerID]; ok {
		c.Write(msg)
	}
}

// broadcastGameStateLocked sends each viewer their own projection. Assumes
// lock is held.
func (r *Room) broadcastGameStateLocked() {
	if r.game == nil {
		return
	}
	for id, c := range r.conns {
		c.Write(map[string]interface{}{
			"type": "game_state",
			"game": r.game.ViewFor(id),
		})
	}
}

// broadcastClockSyncLocked pushes authoritative balances so client countdowns
// can re-anchor. Assumes lock is held.
func (r *Room) broadcastClockSyncLocked() {
	g := r.game
	if g == nil {
		return
	}
	clocks := make(map[string]int64)
	for id, ms := range g.Clock.Snapshot() {
		clocks[id.String()] = ms
	}
	msg := map[string]interface{}{
		"type":       "clock_sync",
		"clocks":     clocks,
		"turnSeq":    g.TurnSeq,
		"serverTime": time.Now().UTC().UnixMilli(),
	}
	if cur := g.CurrentPlayer(); cur != nil {
		msg["activePlayerId"] = cur.ID
	}
	r.broadcastLocked(msg)
}

// broadcastRoomUpdateLocked announces the lobby-level room snapshot. Assumes
// lock is held.
func (r *Room) broadcastRoomUpdateLocked() {
	r.broadcastLocked(map[string]interface{}{
		"type":     "room_update",
		"roomCode": r.Code,
		"hostId":   r.hostID,
		"phase":    r.phaseLocked(),
		"settings": r.settings,
		"players":  r.playerSummariesLocked(),
	})
}

func (r *Room) phaseLocked() game.Phase {
	if r.game == nil {
		return game.PhaseWaiting
	}
	return r.game.Phase
}

func (r *Room) playerSummariesLocked() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, map[string]interface{}{
			"id":          p.ID,
			"displayName": p.DisplayName,
			"avatarRef":   p.AvatarRef,
			"seat":        p.Seat,
			"isAI":        p.IsAI,
			"connected":   p.Connected,
			"isHost":      p.ID == r.hostID,
		})
	}
	return out
}

func (r *Room) publishActionLocked(playerID uuid.UUID, act Action) {
	if r.Sink == nil || r.game == nil {
		return
	}
	rec := ActionRecord{
		RoomCode: r.Code,
		GameID:   r.game.ID.String(),
		PlayerID: playerID.String(),
		Type:     act.Type,
		ActionID: act.ActionID,
		TurnSeq:  r.game.TurnSeq,
		At:       time.Now().UTC(),
	}
	sink := r.Sink
	go func() {
		if err := sink.PublishAction(context.Background(), rec); err != nil {
			log.Warnf("room %s: publish action record: %v", rec.RoomCode, err)
		}
	}()
}

// --- helpers ----------------------------------------------------------------

func (r *Room) playerByID(id uuid.UUID) *models.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// humanCount counts non-AI seats. Assumes lock is held.
func (r *Room) humanCount() int {
	n := 0
	for _, p := range r.players {
		if !p.IsAI {
			n++
		}
	}
	return n
}
