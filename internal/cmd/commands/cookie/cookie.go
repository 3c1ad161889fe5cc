package cookie

import (
	"context"
	"flag"
	"fmt"

	"github.com/boardkit/boardclient/internal/cmd/base"
	"github.com/boardkit/boardclient/pkg/support"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagCookies string
}

func (c *Command) Synopsis() string {
	return "Read a cookie value"
}

func (c *Command) Help() string {
	return `Usage: boardctl cookie [options] <name>

  Prints the decoded value of the named cookie. By default the cookies the
  backend set during the last login are searched; -cookies supplies a
  cookie string such as "a=1; sid=99" instead.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("cookie", flag.ContinueOnError))

	f.ConfigVar(&c.flagConfig)
	f.StringVar(&c.flagCookies, "cookies", "", "Cookie string to search.")

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

	if flags.NArg() != 1 {
		ui.Error("exactly one cookie name is required")
		return 1
	}
	name := flags.Arg(0)

	cookies := c.flagCookies
	if cookies == "" {
		rt, err := c.NewRuntime(ctx, c.flagConfig)
		if err != nil {
			ui.Error(err.Error())
			return 1
		}
		defer rt.Close()

		cookies = rt.Cookies.Get()
	}

	value, err := support.GetCookie(cookies, name)
	if err != nil {
		ui.Error(fmt.Sprintf("%s: %v", name, err))
		return 1
	}

	ui.Output(value)
	return 0
}
