package nav

import (
	"context"
	"flag"
	"fmt"

	"github.com/boardkit/boardclient/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagFormat  string
	flagPage    int
	flagKeyword string
}

type state struct {
	Page    int    `json:"page" yaml:"page"`
	Keyword string `json:"keyword" yaml:"keyword"`
}

func (c *Command) Synopsis() string {
	return "Show or change the saved page and search keyword"
}

func (c *Command) Help() string {
	return `Usage: boardctl nav [options]

  Prints the last-viewed page index and search keyword. Pass -page or
  -keyword to change them. An explicitly empty -keyword clears the search.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("nav", flag.ContinueOnError))

	f.ConfigVar(&c.flagConfig)
	f.FormatVar(&c.flagFormat)
	f.IntVar(&c.flagPage, "page", 0, "Set the page index.")
	f.StringVar(&c.flagKeyword, "keyword", "", "Set the search keyword.")

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

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["page"] && c.flagPage < 0 {
		ui.Error("page must not be negative")
		return 1
	}

	rt, err := c.NewRuntime(ctx, c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	if set["page"] {
		if err := rt.Navigation.SetPage(ctx, c.flagPage); err != nil {
			ui.Error(fmt.Sprintf("error saving page: %v", err))
			return 1
		}
	}
	if set["keyword"] {
		if err := rt.Navigation.SetKeyword(ctx, c.flagKeyword); err != nil {
			ui.Error(fmt.Sprintf("error saving keyword: %v", err))
			return 1
		}
	}

	out := state{Page: rt.Navigation.Page(), Keyword: rt.Navigation.Keyword()}
	if err := c.Print(c.flagFormat, out); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}
