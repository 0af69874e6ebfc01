package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/jaminalder/petal-mancala/internal/domain"
)

const (
	title    = "Petal Mancala"
	helpLine = "1-6 or <- -> Enter: play   r: restart   q: quit"

	pitWidth = 5 // "( 4) "
	pitsLeft = 6 // column of the first pit, right of the left store
)

var (
	styleDefault   = tcell.StyleDefault
	styleTitle     = tcell.StyleDefault.Foreground(tcell.ColorHotPink).Bold(true)
	styleStore     = tcell.StyleDefault.Foreground(tcell.ColorPink)
	styleHighlight = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	styleCursor    = tcell.StyleDefault.Reverse(true)
	styleLastMove  = tcell.StyleDefault.Foreground(tcell.ColorHotPink).Underline(true)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorLightPink)
)

// Screen rows.
const (
	rowTitle = iota
	rowScore
	_
	rowLabelsTop
	rowTopPits
	rowStores
	rowBottomPits
	rowKeys
	_
	rowStatus
	rowHelp
)

// frame is what a single draw shows: the settled state, or an animation
// board with the pit the current stone just dropped into.
type frame struct {
	board     domain.Board
	highlight int
	lastMove  int
	human     domain.Side
	cursor    int // human pit under the cursor, or domain.NoPit
}

func (u *UI) frame() frame {
	f := frame{
		board:     u.view.Board,
		highlight: domain.NoPit,
		lastMove:  u.view.LastMove,
		human:     u.humanSide(),
		cursor:    domain.NoPit,
	}
	if u.anim != nil {
		f.board = u.anim.board
		f.highlight = u.anim.highlight()
		f.lastMove = u.anim.turn.Pit
		return f
	}
	if !u.view.Over && u.view.Turn == f.human {
		first, _ := f.human.Pits()
		f.cursor = first + u.cursor
	}
	return f
}

func (u *UI) draw() {
	s := u.currentSettings()
	f := u.frame()

	u.screen.Clear()
	drawText(u.screen, 0, rowTitle, styleTitle, title)
	drawText(u.screen, 0, rowScore, styleDefault, fmt.Sprintf("%s %d  vs  %s %d",
		s.HumanLabel, f.board.Score(f.human), s.ComputerLabel, f.board.Score(f.human.Other())))

	computer := f.human.Other()
	drawText(u.screen, 0, rowLabelsTop, styleStore, s.ComputerLabel)

	// The computer's row runs right to left so that pits face their opposites.
	first, last := computer.Pits()
	for i := last; i >= first; i-- {
		u.drawPit(f, i, pitsLeft+(last-i)*pitWidth, rowTopPits)
	}
	first, last = f.human.Pits()
	for i := first; i <= last; i++ {
		col := pitsLeft + (i-first)*pitWidth
		u.drawPit(f, i, col, rowBottomPits)
		drawText(u.screen, col+1, rowKeys, styleDefault, fmt.Sprintf("%2d", i-first+1))
	}

	u.drawStore(f, computer.Store(), 0)
	u.drawStore(f, f.human.Store(), pitsLeft+domain.PitsPerSide*pitWidth)
	drawText(u.screen, pitsLeft+domain.PitsPerSide*pitWidth, rowBottomPits, styleStore, s.HumanLabel)

	drawText(u.screen, 0, rowStatus, styleStatus, u.status)
	drawText(u.screen, 0, rowHelp, styleDefault, helpLine)
	u.screen.Show()
}

func (u *UI) drawPit(f frame, idx, x, y int) {
	style := styleDefault
	switch idx {
	case f.highlight:
		style = styleHighlight
	case f.cursor:
		style = styleCursor
	case f.lastMove:
		style = styleLastMove
	}
	drawText(u.screen, x, y, style, fmt.Sprintf("(%2d)", f.board[idx]))
}

func (u *UI) drawStore(f frame, idx, x int) {
	style := styleStore
	if idx == f.highlight {
		style = styleHighlight
	}
	drawText(u.screen, x, rowStores, style, fmt.Sprintf("[%2d]", f.board[idx]))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
