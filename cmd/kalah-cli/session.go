package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/kalah-backend/internal/config"
	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/service"
)

const humanID = "you"

type session struct {
	game *entity.Game
	bot  service.BotService

	in  *bufio.Scanner
	out *termenv.Output
}

// newSession seats the human on side A and the bot on side B of a fresh game.
func newSession(conf config.Game, bot service.BotService, in io.Reader, out *termenv.Output) (*session, error) {
	game, err := entity.NewGame("local", entity.WithBotType, conf.BotDifficulty, conf.PitsPerSide, conf.InitialSeeds)
	if err != nil {
		return nil, err
	}

	game.Players = []*entity.Player{
		{ID: humanID, Side: kalah.SideA, GameID: game.ID},
		entity.NewBotPlayer(game.ID, kalah.SideB),
	}
	game.Status = entity.StatusOngoing

	return &session{
		game: game,
		bot:  bot,
		in:   bufio.NewScanner(in),
		out:  out,
	}, nil
}

// Run plays until the input ends or the player quits.
func (that *session) Run() error {
	that.printf("%s", renderBoard(that.out, that.game.State.Board, nil))

	for {
		if that.game.IsFinished() {
			that.printf("%s\n", describeStatus(that.game.State.Status, that.game.State.Board))
			that.printf("r to play again, q to quit: ")
		} else {
			that.printf("your pit (1-%d), r to reset, q to quit: ", that.game.State.PitsPerSide)
		}

		if !that.in.Scan() {
			that.printf("\n")
			return that.in.Err()
		}

		switch input := strings.TrimSpace(that.in.Text()); input {
		case "":
		case "q":
			return nil
		case "r":
			if err := that.game.Reset(); err != nil {
				return err
			}
			that.printf("%s", renderBoard(that.out, that.game.State.Board, nil))
		default:
			if err := that.play(input); err != nil {
				return err
			}
		}
	}
}

func (that *session) play(input string) error {
	if that.game.IsFinished() {
		that.printf("the game is over\n")
		return nil
	}

	pit, err := strconv.Atoi(input)
	if err != nil {
		that.printf("not a pit number: %q\n", input)
		return nil
	}

	result, err := that.game.MakeTurn(kalah.SideA, pit-1)
	switch {
	case errors.Is(err, kalah.ErrOutOfRange), errors.Is(err, kalah.ErrIllegalMove):
		that.printf("pit %d can't be played\n", pit)
		return nil
	case err != nil:
		return err
	}

	that.show("You", result)

	results, err := that.bot.MakeTurn(that.game)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	for _, result := range results {
		that.show("Bot", result)
	}

	return nil
}

func (that *session) show(who string, result *kalah.MoveResult) {
	that.printf("%s\n", describeMove(that.out, who, result))
	that.printf("%s", renderBoard(that.out, result.Board, result.Path))
}

func (that *session) printf(format string, args ...any) {
	fmt.Fprintf(that.out, format, args...)
}
