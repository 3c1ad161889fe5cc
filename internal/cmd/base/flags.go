package base

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable holding the default
// configuration file path.
const ConfigEnvVar = "BOARD_CONFIG"

// FlagSet wraps flag.FlagSet with help output in the style of the other
// HashiCorp CLIs.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a new FlagSet. Flag errors are returned from Parse so
// commands can report them through the UI.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(&bytes.Buffer{})
	return &FlagSet{FlagSet: f}
}

// Help returns the formatted options section for command help.
func (f *FlagSet) Help() string {
	var out strings.Builder
	out.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&out, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&out, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&out, "\n    %s\n", fl.Usage)
	})

	return out.String()
}

// ConfigVar registers the -config flag shared by commands that talk to the
// backend.
func (f *FlagSet) ConfigVar(p *string) {
	f.StringVar(
		p, "config", os.Getenv(ConfigEnvVar),
		fmt.Sprintf("Path to the boardctl HCL config file. Defaults to $%s.", ConfigEnvVar),
	)
}
