package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/boardkit/boardclient/internal/cmd/base"
	"github.com/boardkit/boardclient/internal/cmd/commands/cookie"
	"github.com/boardkit/boardclient/internal/cmd/commands/login"
	"github.com/boardkit/boardclient/internal/cmd/commands/logout"
	"github.com/boardkit/boardclient/internal/cmd/commands/nav"
	"github.com/boardkit/boardclient/internal/cmd/commands/request"
	"github.com/boardkit/boardclient/internal/cmd/commands/reset"
	"github.com/boardkit/boardclient/internal/cmd/commands/version"
	"github.com/boardkit/boardclient/internal/cmd/commands/whoami"
)

// Commands is the mapping of all available boardctl commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		Log: log,
		UI:  ui,
	}

	Commands = map[string]cli.CommandFactory{
		"cookie": func() (cli.Command, error) {
			return &cookie.Command{Command: b}, nil
		},
		"login": func() (cli.Command, error) {
			return &login.Command{Command: b}, nil
		},
		"logout": func() (cli.Command, error) {
			return &logout.Command{Command: b}, nil
		},
		"nav": func() (cli.Command, error) {
			return &nav.Command{Command: b}, nil
		},
		"request": func() (cli.Command, error) {
			return &request.Command{Command: b}, nil
		},
		"reset": func() (cli.Command, error) {
			return &reset.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
		"whoami": func() (cli.Command, error) {
			return &whoami.Command{Command: b}, nil
		},
	}
}
