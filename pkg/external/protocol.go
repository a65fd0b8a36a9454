// Package external implements a line-based TCP protocol for external
// players and scripts.
//
// Protocol overview:
// - Server listens on a TCP port
// - Client connects and sends one command per line
// - Commands include: actions, validate, move, winner, version, exit
// - Positions are sent as board lines (see ParseBoardLine)
// - Each response is a single line, multi-line answers end with "."
package external

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/bbengine/pkg/engine"
)

// Version is reported by the version command.
const Version = "bbengine external player protocol 1.0"

// Server implements the external player protocol server.
type Server struct {
	engine   *engine.Engine
	logger   *zap.Logger
	listener net.Listener
	mu       sync.Mutex
	running  bool
	options  ServerOptions
}

// ServerOptions configures the external player server.
type ServerOptions struct {
	Host          string // Interface to bind ("" = all)
	Port          int    // TCP port to listen on (0 = any free port)
	Seed          int64  // Seed for the move command (0 = random)
	PromptEnabled bool   // Send prompts after responses
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Port:          1234,
		PromptEnabled: true,
	}
}

// NewServer creates a new external player server.
func NewServer(eng *engine.Engine, opts ServerOptions) *Server {
	return &Server{
		engine:  eng,
		logger:  eng.Logger().Named("external"),
		options: opts,
	}
}

// Start begins listening for connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	addr := net.JoinHostPort(s.options.Host, strconv.Itoa(s.options.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.running = true
	s.logger.Info("external player server listening", zap.String("addr", listener.Addr().String()))

	go s.acceptLoop()

	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	var conns int64
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return // Server stopped
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}

		conns++
		seed := s.options.Seed
		if seed == 0 {
			seed = rand.Int63()
		} else {
			seed += conns - 1
		}
		go s.handleConnection(conn, newSession(seed))
	}
}

// session is the per-connection state.
type session struct {
	rng    *rand.Rand
	prompt bool
}

func newSession(seed int64) *session {
	return &session{rng: rand.New(rand.NewSource(seed))}
}

// handleConnection handles a single client connection.
func (s *Server) handleConnection(conn net.Conn, sess *session) {
	defer conn.Close()

	log := s.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	sess.prompt = s.options.PromptEnabled
	reader := bufio.NewReader(conn)

	if sess.prompt {
		conn.Write([]byte("> "))
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("read failed", zap.Error(err))
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		response := s.processCommand(sess, line)
		if _, err := conn.Write([]byte(response)); err != nil {
			log.Warn("write failed", zap.Error(err))
			return
		}

		// Check for exit command
		if cmd := strings.ToLower(line); cmd == "exit" || cmd == "quit" {
			return
		}

		if sess.prompt {
			conn.Write([]byte("> "))
		}
	}
}

// processCommand processes a single command and returns the response.
func (s *Server) processCommand(sess *session, cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "Error: empty command\n"
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "version":
		return Version + "\n"

	case "help":
		return s.helpResponse()

	case "exit", "quit":
		return "Goodbye\n"

	case "set":
		return s.handleSet(sess, parts[1:])

	case "actions":
		return s.handleActions(parts[1:])

	case "validate":
		return s.handleValidate(parts[1:])

	case "move":
		return s.handleMove(sess, parts[1:])

	case "winner":
		return s.handleWinner(parts[1:])

	default:
		// A bare board line asks for a move
		if strings.HasPrefix(command, "board:") {
			return s.handleMove(sess, parts)
		}
		return fmt.Sprintf("Error: unknown command '%s'\n", command)
	}
}

// helpResponse returns help text.
func (s *Server) helpResponse() string {
	return `Available commands:
  version                        - Show version information
  help                           - Show this help
  set <opt> <value>              - Set option (seed, prompt)
  actions <board>                - List the legal actions, one per line, ending with "."
  validate <index> <cell> <board> - Check an action: "ok" or "illegal <reason>"
  move <board>                   - Pick a random legal action
  winner <board>                 - Report the winner of a terminal board, or "none"
  exit                           - Close connection
Boards are written board:<position>:<side>[:<round>]
`
}

// handleSet handles the set command.
func (s *Server) handleSet(sess *session, args []string) string {
	if len(args) < 2 {
		return "Error: set requires option and value\n"
	}

	option := strings.ToLower(args[0])
	value := args[1]

	switch option {
	case "seed":
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return "Error: seed must be an integer\n"
		}
		sess.rng = rand.New(rand.NewSource(seed))
		return fmt.Sprintf("seed set to %d\n", seed)

	case "prompt":
		sess.prompt = value == "on" || value == "true" || value == "1"
		return fmt.Sprintf("prompt set to %v\n", sess.prompt)

	default:
		return fmt.Sprintf("Error: unknown option '%s'\n", option)
	}
}

// boardArg parses the single board argument of a command.
func boardArg(args []string) (*BoardLine, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one board")
	}
	return ParseBoardLine(args[0])
}

// handleActions lists the legal actions of the side to move.
func (s *Server) handleActions(args []string) string {
	bl, err := boardArg(args)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	if !bl.Board.IsValid() {
		return "Error: invalid position\n"
	}

	var sb strings.Builder
	for _, a := range s.legalActions(bl) {
		sb.WriteString(FormatAction(a))
		sb.WriteByte('\n')
	}
	sb.WriteString(".\n")
	return sb.String()
}

// handleValidate checks one action against the engine's rules.
func (s *Server) handleValidate(args []string) string {
	if len(args) != 3 {
		return "Error: validate requires index, cell and board\n"
	}
	a, err := ParseAction(args[0], args[1])
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	bl, err := ParseBoardLine(args[2])
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}

	if err := s.engine.Validate(bl.Board, bl.Side, a); err != nil {
		var iae *engine.InvalidActionError
		if errors.As(err, &iae) {
			return fmt.Sprintf("illegal %v\n", iae.Err)
		}
		return fmt.Sprintf("illegal %v\n", err)
	}
	return "ok\n"
}

// handleMove picks a random legal action for the side to move.
func (s *Server) handleMove(sess *session, args []string) string {
	bl, err := boardArg(args)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	if !bl.Board.IsValid() {
		return "Error: invalid position\n"
	}
	if bl.Board.IsTerminal() {
		return "game over\n"
	}

	actions := s.legalActions(bl)
	if len(actions) == 0 {
		return "cannot move\n"
	}
	return FormatAction(actions[sess.rng.Intn(len(actions))]) + "\n"
}

// handleWinner reports who has won on a terminal board.
func (s *Server) handleWinner(args []string) string {
	bl, err := boardArg(args)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	if winner, ok := bl.Board.Winner(); ok {
		return strings.ToLower(winner.String()) + "\n"
	}
	return "none\n"
}

// legalActions returns the generated actions the engine would also accept.
func (s *Server) legalActions(bl *BoardLine) []engine.Action {
	generated := s.engine.LegalActions(bl.Board, bl.Side)
	actions := make([]engine.Action, 0, len(generated))
	for _, a := range generated {
		if s.engine.Validate(bl.Board, bl.Side, a) == nil {
			actions = append(actions, a)
		}
	}
	return actions
}
