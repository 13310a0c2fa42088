// Package external implements a line-based brain protocol so the engine
// can be driven by Gomoku tournament managers and other programs.
//
// Protocol overview:
//   - A session runs over any reader/writer pair (stdin/stdout or a TCP connection)
//   - The manager sends one command per line, the brain answers with one line
//   - Moves are written "x,y" with x the column and y the row
//   - START, RESTART, BEGIN, TURN, BOARD, INFO, ABOUT and END are understood
package external

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yourusername/gomokuengine/pkg/engine"
)

// Board sizes a manager may START.
const (
	MinBoardSize = 1
	MaxBoardSize = 100
)

// Server accepts brain protocol sessions over TCP.
type Server struct {
	engine   *engine.MinimaxEngine
	listener net.Listener
	mu       sync.Mutex
	running  bool
	options  ServerOptions
	log      zerolog.Logger
}

// ServerOptions configures the protocol server and its sessions.
type ServerOptions struct {
	Host      string // Interface to listen on
	Port      int    // TCP port to listen on, 0 picks a free port
	Depth     int    // Search depth in plies
	WinLength int    // Stones in a row to win
	Name      string // Reported by ABOUT
	Version   string // Reported by ABOUT
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Host:      "localhost",
		Port:      1234,
		Depth:     2,
		WinLength: engine.DefaultWinLength,
		Name:      "gomokuengine",
		Version:   "1.0",
	}
}

// NewServer creates a new protocol server.
func NewServer(eng *engine.MinimaxEngine, opts ServerOptions, logger zerolog.Logger) *Server {
	return &Server{
		engine:  eng,
		options: opts,
		log:     logger,
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
	s.log.Info().Str("addr", listener.Addr().String()).Msg("protocol server listening")

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

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	log.Debug().Msg("session started")

	session := NewSession(s.engine, s.options)
	if err := session.Run(conn, conn); err != nil {
		log.Warn().Err(err).Msg("session ended with error")
		return
	}
	log.Debug().Msg("session ended")
}

// Session holds the game state of one manager connection.
type Session struct {
	engine  *engine.MinimaxEngine
	options ServerOptions

	position *engine.Position
	self     engine.Player
	board    []boardStone // Pending stones while reading a BOARD block
	inBoard  bool
}

type boardStone struct {
	move engine.Move
	own  bool
}

// NewSession creates a session. A START command is required before play.
func NewSession(eng *engine.MinimaxEngine, opts ServerOptions) *Session {
	if opts.WinLength <= 0 {
		opts.WinLength = engine.DefaultWinLength
	}
	if opts.Depth <= 0 {
		opts.Depth = 1
	}
	return &Session{engine: eng, options: opts}
}

// Position returns the current game position, nil before START.
func (s *Session) Position() *engine.Position {
	return s.position
}

// Run reads commands from r and writes responses to w until END or EOF.
func (s *Session) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		response, done := s.Process(line)
		if response != "" {
			if _, err := out.WriteString(response + "\n"); err != nil {
				return err
			}
			if err := out.Flush(); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
	return scanner.Err()
}

// Process handles one input line. It returns the response ("" for none)
// and whether the session should end.
func (s *Session) Process(line string) (string, bool) {
	if s.inBoard {
		return s.boardLine(line), false
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", false
	}
	command := strings.ToUpper(parts[0])
	args := parts[1:]

	switch command {
	case "START":
		return s.handleStart(args), false
	case "RESTART":
		if s.position == nil {
			return "ERROR no game started", false
		}
		return s.handleStart([]string{strconv.Itoa(s.position.Size())}), false
	case "BEGIN":
		return s.handleBegin(), false
	case "TURN":
		return s.handleTurn(args), false
	case "BOARD":
		if s.position == nil {
			return "ERROR no game started", false
		}
		s.inBoard = true
		s.board = s.board[:0]
		return "", false
	case "INFO":
		return s.handleInfo(args), false
	case "ABOUT":
		return fmt.Sprintf("name=%q, version=%q", s.options.Name, s.options.Version), false
	case "END":
		return "", true
	}
	return fmt.Sprintf("UNKNOWN command %s", command), false
}

func (s *Session) handleStart(args []string) string {
	if len(args) != 1 {
		return "ERROR START needs the board size"
	}
	size, err := strconv.Atoi(args[0])
	if err != nil {
		return "ERROR invalid board size"
	}
	if size < MinBoardSize || size > MaxBoardSize {
		return fmt.Sprintf("ERROR unsupported board size %d", size)
	}
	p, err := engine.EmptyPosition(size, s.options.WinLength, engine.Max)
	if err != nil {
		return fmt.Sprintf("ERROR %v", err)
	}
	s.position = p
	s.self = engine.Max
	return "OK"
}

func (s *Session) handleBegin() string {
	if s.position == nil {
		return "ERROR no game started"
	}
	if s.position.StoneCount() != 0 {
		return "ERROR BEGIN after moves were played"
	}
	s.self = engine.Max
	return s.play()
}

func (s *Session) handleTurn(args []string) string {
	if s.position == nil {
		return "ERROR no game started"
	}
	if len(args) != 1 {
		return "ERROR TURN needs a move"
	}
	m, err := ParseMove(args[0])
	if err != nil {
		return fmt.Sprintf("ERROR %v", err)
	}

	next, err := s.position.ApplyMove(m)
	if err != nil {
		return fmt.Sprintf("ERROR %v", err)
	}
	s.self = s.position.ToMove().Opponent()
	s.position = next
	return s.play()
}

func (s *Session) handleInfo(args []string) string {
	if len(args) < 2 {
		return ""
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return ""
	}
	switch strings.ToLower(args[0]) {
	case "depth":
		if value > 0 {
			s.options.Depth = value
		}
	case "win_length":
		if value > 0 {
			s.options.WinLength = value
		}
	}
	return ""
}

// boardLine collects "x,y,who" lines until DONE, then moves.
// who is 1 for the brain's own stones and 2 for the opponent's.
func (s *Session) boardLine(line string) string {
	if strings.EqualFold(line, "DONE") {
		s.inBoard = false
		if err := s.loadBoard(); err != nil {
			return fmt.Sprintf("ERROR %v", err)
		}
		return s.play()
	}

	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return fmt.Sprintf("ERROR invalid board line %q", line)
	}
	m, err := ParseMove(fields[0] + "," + fields[1])
	if err != nil {
		return fmt.Sprintf("ERROR %v", err)
	}
	who := strings.TrimSpace(fields[2])
	if who != "1" && who != "2" {
		return fmt.Sprintf("ERROR invalid stone owner %q", who)
	}
	s.board = append(s.board, boardStone{move: m, own: who == "1"})
	return ""
}

// loadBoard rebuilds the position from a BOARD block. The brain moves next,
// so it is Max when both sides have the same number of stones.
func (s *Session) loadBoard() error {
	size := s.position.Size()
	cells := make([][]engine.Cell, size)
	for i := range cells {
		cells[i] = make([]engine.Cell, size)
	}

	own, opp := 0, 0
	for _, st := range s.board {
		if st.own {
			own++
		} else {
			opp++
		}
	}
	switch opp - own {
	case 0:
		s.self = engine.Max
	case 1:
		s.self = engine.Min
	default:
		return fmt.Errorf("%d own and %d opponent stones cannot be the brain's turn", own, opp)
	}

	var last *engine.Move
	for i := range s.board {
		st := s.board[i]
		if !st.move.InBounds(size) {
			return fmt.Errorf("stone %v is off the board", st.move)
		}
		owner := s.self
		if !st.own {
			owner = s.self.Opponent()
			last = &s.board[i].move
		}
		cells[st.move.Row][st.move.Col] = engine.CellFor(owner)
	}

	p, err := engine.NewPosition(cells, s.self, last, s.position.WinLength())
	if err != nil {
		return err
	}
	s.position = p
	return nil
}

// play searches for the brain's move, applies it and formats the reply.
func (s *Session) play() string {
	if s.position.IsTerminal() {
		return "ERROR game is over"
	}
	result, err := s.engine.FindBestMove(s.position, s.options.Depth)
	if err != nil {
		return fmt.Sprintf("ERROR %v", err)
	}
	if !result.HasMove {
		return "ERROR no legal moves"
	}
	next, err := s.position.ApplyMove(result.Move)
	if err != nil {
		return fmt.Sprintf("ERROR %v", err)
	}
	s.position = next
	return FormatMove(result.Move)
}

// ParseMove reads "x,y" where x is the column and y the row.
func ParseMove(s string) (engine.Move, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return engine.Move{}, fmt.Errorf("invalid move %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Move{}, fmt.Errorf("invalid column in %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Move{}, fmt.Errorf("invalid row in %q", s)
	}
	return engine.NewMove(y, x), nil
}

// FormatMove writes m as "x,y".
func FormatMove(m engine.Move) string {
	return fmt.Sprintf("%d,%d", m.Col, m.Row)
}
