package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/qepting91/weibo-scraper/internal/collector"
	"github.com/qepting91/weibo-scraper/internal/config"
	"github.com/qepting91/weibo-scraper/internal/domain"
	"github.com/qepting91/weibo-scraper/internal/logging"
	"github.com/qepting91/weibo-scraper/internal/scraper"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "scraper",
		Usage:     "print a weibo account's follower count and its latest post",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uid", Usage: "numeric account id (default " + config.DefaultUID + ")"},
			&cli.StringFlag{Name: "mode", Usage: "collector mode: public or mock"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error or disabled"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"), config.Overrides{
				UID:      c.String("uid"),
				Mode:     c.String("mode"),
				LogLevel: c.String("log-level"),
			})
			if err != nil {
				return err
			}

			logger, err := logging.New(stderr, cfg.LogLevel)
			if err != nil {
				return err
			}

			client, err := collector.NewCollector(cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize collector")
				return err
			}
			logger.Info().Str("mode", cfg.Mode).Str("uid", cfg.UID).Msg("collector initialized")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			corpus, err := run(ctx, client, cfg.UID, stdout)
			if err != nil {
				return err
			}
			logger.Info().Int("corpus", len(corpus)).Msg("scrape complete")
			return nil
		},
	}
}

// run resolves uid to a screen name and pulls the first post of that account.
func run(ctx context.Context, client domain.Collector, uid string, out io.Writer) (domain.Corpus, error) {
	name, err := scraper.GetUsername(ctx, client, uid, out)
	if err != nil {
		return nil, err
	}
	return scraper.Scrape(ctx, client, domain.Corpus{}, name, out)
}
