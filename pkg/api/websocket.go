package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/bbengine/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "new", "move", "actions", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "state", "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSNewGame is the payload of a "new" message.
type WSNewGame struct {
	Side     string `json:"side,omitempty"`     // Side the client plays (default white)
	Seed     int64  `json:"seed,omitempty"`     // Seed of the server's random player
	Position string `json:"position,omitempty"` // Start position (default standard)
}

// WSMove is the payload of a "move" message.
type WSMove struct {
	Index int `json:"index"`
	Cell  int `json:"cell"`
}

// WSState is sent after every exchange while the game is running.
type WSState struct {
	GameID   string           `json:"game_id"`
	Position string           `json:"position"`
	Cells    []int            `json:"cells"`
	Round    int              `json:"round"`
	ToMove   string           `json:"to_move"`
	You      string           `json:"you"`
	Reply    *ActionResponse  `json:"reply,omitempty"`   // The server's last action
	Actions  []ActionResponse `json:"actions,omitempty"` // Only for "actions" requests
}

// WSResult is sent once the game is over.
type WSResult struct {
	GameID   string `json:"game_id"`
	Winner   string `json:"winner"`
	Reason   string `json:"reason"`
	Round    int    `json:"round"`
	Forfeit  bool   `json:"forfeit"`
	Position string `json:"position"`
}

// WSClient is one connected player. Each client runs at most one game at a
// time against a random player on the server.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	logger   *zap.Logger

	game    *engine.Game
	gameID  string
	human   engine.Side
	pending engine.Action
}

// WebSocket handles WebSocket connections for interactive games.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	session := uuid.New().String()
	client := &WSClient{
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 256),
		logger:   h.logger.With(zap.String("session", session)),
	}
	client.logger.Debug("websocket connected", zap.String("remote", r.RemoteAddr))
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		close(c.sendChan)
		c.conn.Close()
		c.logger.Debug("websocket closed")
	}()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "new":
		c.handleNew(msg)
	case "move":
		c.handleMove(msg)
	case "actions":
		c.handleActions(msg)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendError(msg, "unknown message type")
	}
}

func (c *WSClient) sendError(msg WSMessage, text string) {
	c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: text}
}

// humanPolicy hands the engine the action received in the last "move".
func (c *WSClient) humanPolicy(engine.Snapshot) (engine.Action, float64) {
	return c.pending, 0
}

func (c *WSClient) handleNew(msg WSMessage) {
	var req WSNewGame
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendError(msg, "invalid payload")
			return
		}
	}

	human := engine.White
	if req.Side != "" {
		s, err := engine.ParseSide(req.Side)
		if err != nil || s == engine.NoSide {
			c.sendError(msg, "invalid side")
			return
		}
		human = s
	}

	board := engine.StartingPosition()
	if req.Position != "" {
		b, err := engine.ParseBoard(req.Position)
		if err != nil || !b.IsValid() {
			c.sendError(msg, "invalid position")
			return
		}
		board = b
	}

	seed := req.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	e := c.handlers.engine
	c.gameID = uuid.New().String()
	c.human = human
	me := engine.PlayerFunc(c.humanPolicy)
	bot := e.NewRandomPlayer(human.Opponent(), seed)
	opts := engine.GameOptions{Rules: e.Rules(), Logger: c.logger.With(zap.String("game_id", c.gameID))}
	if human == engine.White {
		c.game = engine.NewGameFrom(board, me, bot, opts)
	} else {
		c.game = engine.NewGameFrom(board, bot, me, opts)
	}
	c.logger.Info("websocket game started", zap.String("game_id", c.gameID), zap.String("side", human.String()))

	// the server opens when the client plays black
	var reply *engine.Action
	if human == engine.Black {
		if c.step(msg) {
			return
		}
		reply = c.lastAction()
	}
	c.sendState(msg, reply, false)
}

func (c *WSClient) handleMove(msg WSMessage) {
	if c.game == nil {
		c.sendError(msg, "no game in progress")
		return
	}
	if _, over := c.game.Result(); over {
		c.sendError(msg, "game is over")
		return
	}
	var req WSMove
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg, "invalid payload")
		return
	}

	c.pending = engine.Action{Index: req.Index, Cell: req.Cell}
	if c.step(msg) {
		return
	}
	if c.step(msg) {
		return
	}
	c.sendState(msg, c.lastAction(), false)
}

func (c *WSClient) handleActions(msg WSMessage) {
	if c.game == nil {
		c.sendError(msg, "no game in progress")
		return
	}
	c.sendState(msg, nil, true)
}

// step plays one round. It reports true when the exchange is finished, in
// which case a result or error has already been sent.
func (c *WSClient) step(msg WSMessage) bool {
	done, err := c.game.Step()
	if err != nil && !errors.Is(err, engine.ErrRoundLimit) {
		c.sendError(msg, err.Error())
		return true
	}
	if !done {
		return false
	}
	result, over := c.game.Result()
	if !over {
		result = engine.Result{Round: c.game.Round(), Winner: engine.NoSide, Reason: engine.ErrRoundLimit.Error()}
	}
	c.logger.Info("websocket game over",
		zap.String("game_id", c.gameID),
		zap.String("winner", result.Winner.String()),
		zap.Bool("forfeit", result.Forfeit),
	)
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: WSResult{
		GameID:   c.gameID,
		Winner:   result.Winner.String(),
		Reason:   result.Reason,
		Round:    result.Round,
		Forfeit:  result.Forfeit,
		Position: c.game.Board().PositionID(),
	}}
	return true
}

func (c *WSClient) lastAction() *engine.Action {
	h := c.game.History()
	if len(h) == 0 {
		return nil
	}
	a := h[len(h)-1].Action
	return &a
}

func (c *WSClient) sendState(msg WSMessage, reply *engine.Action, withActions bool) {
	board := c.game.Board()
	cells := board.Cells()
	state := WSState{
		GameID:   c.gameID,
		Position: board.PositionID(),
		Cells:    cells[:],
		Round:    c.game.Round(),
		ToMove:   c.game.SideToMove().String(),
		You:      c.human.String(),
	}
	if reply != nil {
		state.Reply = &ActionsToResponse([]engine.Action{*reply})[0]
	}
	if withActions {
		e := c.handlers.engine
		var legal []engine.Action
		for _, a := range e.LegalActions(board, c.human) {
			if e.Validate(board, c.human, a) == nil {
				legal = append(legal, a)
			}
		}
		state.Actions = ActionsToResponse(legal)
	}
	c.sendChan <- WSResponse{Type: "state", ID: msg.ID, Payload: state}
}
