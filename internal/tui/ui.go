// Package tui is the terminal front-end: it draws the board, turns key
// presses into moves and animates every committed turn before the next one
// may start.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jaminalder/petal-mancala/internal/app"
	"github.com/jaminalder/petal-mancala/internal/domain"
)

// Settings controls pacing and labels. It can be swapped while running.
type Settings struct {
	AnimationStep time.Duration
	ComputerDelay time.Duration
	HumanLabel    string
	ComputerLabel string
}

// DefaultSettings matches the config defaults.
func DefaultSettings() Settings {
	return Settings{
		AnimationStep: 200 * time.Millisecond,
		ComputerDelay: time.Second,
		HumanLabel:    "You",
		ComputerLabel: "Computer",
	}
}

// animation replays a turn one sown stone at a time.
type animation struct {
	turn  app.Turn
	board domain.Board
	step  int
}

func newAnimation(t app.Turn) *animation {
	b := t.Before.Board
	b[t.Pit] = 0
	return &animation{turn: t, board: b}
}

// advance drops the next stone and reports whether stones remain.
func (a *animation) advance() bool {
	if a.step < len(a.turn.Path) {
		a.board[a.turn.Path[a.step]]++
		a.step++
	}
	return a.step < len(a.turn.Path)
}

func (a *animation) highlight() int {
	if a.step == 0 {
		return a.turn.Pit
	}
	return a.turn.Path[a.step-1]
}

// UI runs one interactive game on a tcell screen.
type UI struct {
	screen tcell.Screen
	svc    *app.Service
	logger zerolog.Logger

	settingsMu sync.Mutex
	settings   Settings

	ready  chan struct{}
	gameID string

	// Owned by the Run goroutine.
	view   domain.GameState
	anim   *animation
	cursor int
	status string
	turns  <-chan app.Turn
	unsub  func()
}

// New creates a UI. The screen is initialized by Run.
func New(screen tcell.Screen, svc *app.Service, settings Settings) *UI {
	return &UI{
		screen:   screen,
		svc:      svc,
		settings: settings,
		logger:   log.With().Str("component", "tui").Logger(),
		ready:    make(chan struct{}),
	}
}

// SetSettings replaces pacing and labels, e.g. after a config reload.
func (u *UI) SetSettings(s Settings) {
	u.settingsMu.Lock()
	u.settings = s
	u.settingsMu.Unlock()
}

func (u *UI) currentSettings() Settings {
	u.settingsMu.Lock()
	defer u.settingsMu.Unlock()
	return u.settings
}

// Ready is closed once Run has created the game.
func (u *UI) Ready() <-chan struct{} { return u.ready }

// GameID returns the id of the running game. Valid after Ready is closed.
func (u *UI) GameID() string { return u.gameID }

// Run plays until the user quits or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	if err := u.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer u.screen.Fini()

	gs, err := u.svc.CreateGame()
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	u.gameID = gs.ID
	u.view = gs.Game
	if err := u.subscribe(ctx); err != nil {
		return err
	}
	defer func() { u.unsub() }()
	close(u.ready)

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	var stepC, computerC <-chan time.Time
	u.status = "Your move: press 1-6 or use the arrows and Enter"
	u.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				u.screen.Sync()
			case *tcell.EventKey:
				switch u.handleKey(ev) {
				case actionQuit:
					return nil
				case actionRestart:
					if err := u.restart(ctx); err != nil {
						return err
					}
					stepC, computerC = nil, nil
				}
			}

		case t, ok := <-u.turns:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("turn subscription closed")
			}
			u.anim = newAnimation(t)
			stepC = time.After(u.currentSettings().AnimationStep)

		case <-stepC:
			stepC = nil
			if u.anim.advance() {
				stepC = time.After(u.currentSettings().AnimationStep)
				break
			}
			computerC = u.finishTurn()

		case <-computerC:
			computerC = nil
			if _, err := u.svc.ComputerMove(u.gameID); err != nil {
				u.logger.Error().Err(err).Str("game_id", u.gameID).Msg("Computer move failed")
				u.status = "Computer could not move: " + err.Error()
			}
		}
		u.draw()
	}
}

func (u *UI) subscribe(ctx context.Context) error {
	turns, unsub, err := u.svc.Subscribe(ctx, u.gameID)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	u.turns, u.unsub = turns, unsub
	return nil
}

// restart resets the game. Turns already queued for the old game are
// discarded with the old subscription.
func (u *UI) restart(ctx context.Context) error {
	gs, err := u.svc.Restart(u.gameID)
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	u.unsub()
	if err := u.subscribe(ctx); err != nil {
		return err
	}
	u.view = gs.Game
	u.anim = nil
	u.cursor = 0
	u.status = "New game. Your move"
	return nil
}

// finishTurn shows the final position of the animated turn, releases the
// service for the next move and, if the computer is to move, returns the
// timer for its move.
func (u *UI) finishTurn() <-chan time.Time {
	t := u.anim.turn
	u.anim = nil
	u.view = t.After
	if err := u.svc.Settle(u.gameID); err != nil {
		u.logger.Error().Err(err).Str("game_id", u.gameID).Msg("Settle failed")
	}

	s := u.currentSettings()
	u.status = u.describe(t, s)
	if u.view.Over {
		return nil
	}
	gs, ok := u.svc.Get(u.gameID)
	if !ok || gs.HumansTurn() {
		return nil
	}
	return time.After(s.ComputerDelay)
}

func (u *UI) describe(t app.Turn, s Settings) string {
	if t.After.Over {
		switch {
		case t.After.Winner == domain.Tie:
			return "It's a tie! Press r to play again"
		case winnerSide(t.After.Winner) == u.humanSide():
			return s.HumanLabel + " won! Press r to play again"
		default:
			return s.ComputerLabel + " won! Press r to play again"
		}
	}

	human := t.Side == u.humanSide()
	switch {
	case t.After.Captured && human:
		return "Captured! " + s.ComputerLabel + " to move"
	case t.After.Captured:
		return s.ComputerLabel + " captured! Your move"
	case t.ExtraTurn() && human:
		return "Extra turn! Your move again"
	case t.ExtraTurn():
		return s.ComputerLabel + " gets another turn"
	case human:
		return s.ComputerLabel + " is thinking..."
	default:
		return "Your move"
	}
}

func (u *UI) humanSide() domain.Side {
	if gs, ok := u.svc.Get(u.gameID); ok {
		return gs.HumanSide
	}
	return domain.SideA
}

func winnerSide(w domain.Winner) domain.Side {
	if w == domain.WinnerB {
		return domain.SideB
	}
	return domain.SideA
}

type action uint8

const (
	actionNone action = iota
	actionQuit
	actionRestart
)

func (u *UI) handleKey(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyLeft:
		u.cursor = (u.cursor + domain.PitsPerSide - 1) % domain.PitsPerSide
	case tcell.KeyRight:
		u.cursor = (u.cursor + 1) % domain.PitsPerSide
	case tcell.KeyEnter:
		u.play(u.cursor)
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'q' || r == 'Q':
			return actionQuit
		case r == 'r' || r == 'R':
			return actionRestart
		case r >= '1' && r <= '0'+domain.PitsPerSide:
			u.cursor = int(r - '1')
			u.play(u.cursor)
		}
	}
	return actionNone
}

// play submits the human's n-th pit (0-based, left to right).
func (u *UI) play(n int) {
	first, _ := u.humanSide().Pits()
	pit := first + n
	if _, err := u.svc.Play(u.gameID, pit); err != nil {
		u.status = playError(err)
		u.logger.Debug().Err(err).Int("pit", pit).Msg("Input rejected")
	}
}

func playError(err error) string {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, app.ErrBusy):
		return "Wait for the move to finish"
	case errors.Is(err, domain.ErrEmptyPit):
		return "That pit is empty"
	case errors.Is(err, domain.ErrNotYourPit):
		return "Pick one of your own pits"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over, press r to play again"
	default:
		return "Invalid move"
	}
}
