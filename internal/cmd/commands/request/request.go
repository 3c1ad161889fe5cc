package request

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/boardkit/boardclient/internal/cmd/base"
	"github.com/boardkit/boardclient/pkg/dispatch"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagFormat  string
	flagMetrics bool
}

func (c *Command) Synopsis() string {
	return "Send an authenticated request to the backend"
}

func (c *Command) Help() string {
	return `Usage: boardctl request [options] <get|post|put|delete|login> <path> [param...]

  Sends a request through the dispatcher with the stored access token.
  Parameters are given as key=value (sent as a string) or key:=json (the
  value is decoded as JSON, so page:=1 sends a number).

  GET parameters become the query string, login parameters a form body and
  everything else a JSON body. A 401 answer clears the stored session.

  Examples:
    boardctl request get /board page:=1 size:=10
    boardctl request post /board title=hi` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("request", flag.ContinueOnError))

	f.ConfigVar(&c.flagConfig)
	f.FormatVar(&c.flagFormat)
	f.BoolVar(&c.flagMetrics, "metrics", false, "Print client metrics after the request.")

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

	rest := flags.Args()
	if len(rest) < 2 {
		ui.Error("operation and path are required")
		ui.Error(c.Help())
		return 1
	}

	op, err := dispatch.ParseOperation(rest[0])
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	params, err := ParseParams(rest[2:])
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	rt, err := c.NewRuntime(ctx, c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	exitCode := 1
	rt.Dispatcher.Do(ctx, dispatch.Request{
		Operation: op,
		Path:      rest[1],
		Params:    params,
		OnSuccess: func(resp *dispatch.Response) {
			exitCode = 0
			if resp == nil {
				ui.Info("No content.")
				return
			}
			if err := c.Print(c.flagFormat, resp.Body); err != nil {
				ui.Error(err.Error())
				exitCode = 1
			}
		},
		OnFailure: func(resp *dispatch.Response) {
			ui.Error(fmt.Sprintf("request failed with status %d", resp.StatusCode))
			if out, err := base.Render(c.flagFormat, resp.Body); err == nil {
				ui.Error(out)
			}
		},
	})

	if c.flagMetrics {
		if err := c.printMetrics(rt.Registry); err != nil {
			ui.Error(fmt.Sprintf("error gathering metrics: %v", err))
		}
	}

	return exitCode
}

func (c *Command) printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	var out strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&out, mf); err != nil {
			return err
		}
	}
	c.UI.Output(strings.TrimSuffix(out.String(), "\n"))
	return nil
}

// ParseParams converts key=value and key:=json arguments into request
// parameters.
func ParseParams(args []string) (dispatch.Params, error) {
	if len(args) == 0 {
		return nil, nil
	}

	params := make(dispatch.Params, len(args))
	for _, arg := range args {
		if key, raw, ok := strings.Cut(arg, ":="); ok && !strings.Contains(key, "=") {
			if key == "" {
				return nil, fmt.Errorf("invalid parameter %q: empty key", arg)
			}
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return nil, fmt.Errorf("invalid JSON value for %q: %w", key, err)
			}
			params[key] = v
			continue
		}

		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value or key:=json", arg)
		}
		params[key] = value
	}

	return params, nil
}
