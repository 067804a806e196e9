package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [seed-url]",
	Short: "Discover links from a seed page and print them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	seed := cfg.SeedURL()
	if len(args) == 1 {
		seed = args[0]
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess := session.NewSession(cfg, newLogger(cmd))
	links, err := sess.ExtractLinks(ctx, seed, 0)
	if errors.Is(err, session.ErrNoSeedProvided) {
		return fmt.Errorf("%w: pass a seed url or set seedUrl in the config file", err)
	}

	out := cmd.OutOrStdout()
	for _, link := range links {
		fmt.Fprintln(out, link)
	}
	return err
}
