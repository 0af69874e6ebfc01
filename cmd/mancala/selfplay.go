package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jaminalder/petal-mancala/internal/ai"
	"github.com/jaminalder/petal-mancala/internal/domain"
)

// maxPlies bounds a single game; real games end far below it.
const maxPlies = 1000

type tally struct {
	Games, WinsA, WinsB, Ties, Plies int
}

// playOne lets the selector play both sides of a fresh game.
func playOne(sel *ai.Selector) (domain.GameState, int) {
	s := domain.New()
	plies := 0
	for !s.Over && plies < maxPlies {
		pit := sel.Choose(s)
		if pit == ai.NoMove {
			break
		}
		s = domain.Apply(s, pit)
		plies++
	}
	return s, plies
}

func runSelfPlay(ctx context.Context, sel *ai.Selector, games int) tally {
	var t tally
	for i := 0; i < games; i++ {
		if ctx.Err() != nil {
			log.Warn().Int("played", t.Games).Msg("Self-play interrupted")
			break
		}
		s, plies := playOne(sel)
		if err := domain.CheckInvariants(s); err != nil || !s.Over {
			log.Error().Err(err).Int("game", i+1).Int("plies", plies).Stringer("board", s.Board).Msg("Self-play game did not finish cleanly")
			continue
		}

		t.Games++
		t.Plies += plies
		switch s.Winner {
		case domain.WinnerA:
			t.WinsA++
		case domain.WinnerB:
			t.WinsB++
		case domain.Tie:
			t.Ties++
		}
		log.Info().
			Int("game", i+1).
			Int("plies", plies).
			Str("winner", s.Winner.String()).
			Int("score_a", s.Board.Score(domain.SideA)).
			Int("score_b", s.Board.Score(domain.SideB)).
			Msg("Self-play game finished")
	}

	log.Info().
		Int("games", t.Games).
		Int("wins_a", t.WinsA).
		Int("wins_b", t.WinsB).
		Int("ties", t.Ties).
		Int("plies", t.Plies).
		Msg("Self-play summary")
	return t
}
