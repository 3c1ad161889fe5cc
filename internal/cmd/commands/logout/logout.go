package logout

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/boardkit/boardclient/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagConfig string
	flagLocal  bool
}

func (c *Command) Synopsis() string {
	return "End the server session and clear local state"
}

func (c *Command) Help() string {
	return `Usage: boardctl logout [options]

  Calls the system logout endpoint with the stored cookies, then clears the
  stored session and cookies. Local state is cleared even if the server
  rejects the call.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("logout", flag.ContinueOnError))

	f.ConfigVar(&c.flagConfig)
	f.BoolVar(&c.flagLocal, "local", false, "Only clear the local session.")

	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Log, c.UI
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

	exitCode := 0
	if !c.flagLocal {
		status, err := rt.Support.Logout(ctx)
		switch {
		case err != nil:
			ui.Warn(fmt.Sprintf("error calling logout endpoint: %v", err))
			exitCode = 1
		case status != http.StatusOK:
			ui.Warn(fmt.Sprintf("server answered logout with status %d", status))
			exitCode = 1
		default:
			logger.Debug("server session ended")
		}
	}

	if err := rt.Session.Reset(ctx); err != nil {
		ui.Error(fmt.Sprintf("error clearing session: %v", err))
		return 1
	}
	if err := rt.Cookies.Set(ctx, ""); err != nil {
		ui.Error(fmt.Sprintf("error clearing cookies: %v", err))
		return 1
	}

	ui.Output("Logged out.")
	return exitCode
}
