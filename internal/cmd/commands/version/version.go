package version

import (
	"github.com/boardkit/boardclient/internal/cmd/base"
	"github.com/boardkit/boardclient/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of boardctl"
}

func (c *Command) Help() string {
	return "Usage: boardctl version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
