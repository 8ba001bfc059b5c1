package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"klondike/internal/app"
	"klondike/internal/config"
	"klondike/internal/ports/terminal"
	"klondike/internal/scoring"
)

func main() {
	configPath := flag.String("config", "data/klondike_config.json", "game config file; missing means defaults")
	seed := flag.Int64("seed", 0, "fixed shuffle seed, 0 seeds from the clock")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	}
	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	var cfg config.GameConfig
	if err := config.LoadGameConfig(*configPath); err != nil {
		logger.Warn("using default config", "path", *configPath, "err", err)
	} else if loaded := config.GetGameConfig(); loaded != nil {
		cfg = *loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	svc, err := app.NewServiceFromConfig(&cfg)
	if err != nil {
		logger.Error("bad config", "err", err)
		os.Exit(1)
	}
	session, err := terminal.NewSession(svc, scoring.TableFromConfig(&cfg), logger)
	if err != nil {
		logger.Error("deal failed", "err", err)
		os.Exit(1)
	}

	pterm.Print("\n")
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("K", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("londike", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.Error(err.Error())
	}
	pterm.Print(title)
	pterm.Print(terminal.Banner())
	pterm.Println(session.Board())

	for {
		line, err := pterm.DefaultInteractiveTextInput.WithDefaultText(">").Show()
		if err != nil {
			logger.Error("read input", "err", err)
			return
		}
		out, quit := session.Step(line)
		pterm.Print(out)
		if quit {
			return
		}
	}
}
