package reset

import (
	"context"
	"flag"
	"fmt"

	"github.com/boardkit/boardclient/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Clear the stored session without contacting the server"
}

func (c *Command) Help() string {
	return `Usage: boardctl reset [options]

  Resets every session field to its default in one step. Navigation state
  (page and keyword) is kept.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("reset", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	return f
}

func (c *Command) Run(args []string) int {
	ui := c.UI
	ctx := context.Background()

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	rt, err := c.NewRuntime(ctx, c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	if err := rt.Session.Reset(ctx); err != nil {
		ui.Error(fmt.Sprintf("error resetting session: %v", err))
		return 1
	}

	ui.Output("Session cleared.")
	return 0
}
