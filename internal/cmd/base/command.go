package base

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every boardctl command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}
