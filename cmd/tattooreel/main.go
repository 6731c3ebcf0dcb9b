package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ivlev/tattooreel/internal/config"
	"github.com/ivlev/tattooreel/internal/logging"
	"github.com/ivlev/tattooreel/internal/system"
)

// BuildVersion is set with -ldflags "-X main.BuildVersion=...".
var BuildVersion = "dev"

const usage = `tattooreel - AI tattoo designs to short promo videos

Usage:
  tattooreel generate -prompt "koi fish sleeve" [-n 3]
  tattooreel import   -input designs/ | flash.pdf [-split]
  tattooreel render   -images a.png,b.png | -input designs/ | -background mc1 [options]
  tattooreel preview  [-video output/tattoo-video-1.avi] [-song 3]
  tattooreel share    [-url https://...] [-qr output/share.png]
  tattooreel catalog  songs | voices | colors | videos [-category minecraft] [-q epic]

Run "tattooreel <command> -h" for the options of a command.
`

type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// newApp loads the configuration and builds the logger.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.BuildVersion = BuildVersion

	log := logging.New(cfg.Env, os.Stderr)
	system.InitResourceLimits(log)
	return &app{cfg: cfg, log: log}, nil
}

// notice logs a failure once at the command boundary.
func (a *app) notice(err error, msg string) error {
	a.log.Error().Err(err).Str("notice", msg).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "generate":
		err = runGenerate(ctx, args)
	case "import":
		err = runImport(ctx, args)
	case "render":
		err = runRender(ctx, args)
	case "preview":
		err = runPreview(ctx, args)
	case "share":
		err = runShare(args)
	case "catalog":
		err = runCatalog(os.Stdout, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		os.Exit(1)
	}
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ", ") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
