// Command kalah-cli plays Kalah against the bot in a terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/kalah-backend/internal/config"
	"github.com/rocketscienceinc/kalah-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	difficulty := flag.String("difficulty", "", "bot difficulty: easy or hard (overrides config)")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "seed of the easy bot")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if *difficulty != "" {
		conf.Game.BotDifficulty = *difficulty
	}

	session, err := newSession(conf.Game, service.NewBotService(*seed), os.Stdin, termenv.NewOutput(os.Stdout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "start game: %v\n", err)
		os.Exit(1)
	}

	if err = session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
