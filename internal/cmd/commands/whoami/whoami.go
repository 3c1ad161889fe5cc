package whoami

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/boardkit/boardclient/internal/cmd/base"
	"github.com/boardkit/boardclient/pkg/session"
)

type Command struct {
	*base.Command

	flagConfig string
	flagFormat string
}

// identity is the printed view of the session. The token itself is never
// shown.
type identity struct {
	LoggedIn    bool       `json:"logged_in" yaml:"logged_in"`
	UserID      string     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	UserName    string     `json:"user_nm,omitempty" yaml:"user_nm,omitempty"`
	UserEmail   string     `json:"user_email,omitempty" yaml:"user_email,omitempty"`
	Permissions string     `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	HasToken    bool       `json:"has_token" yaml:"has_token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired     bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
}

func (c *Command) Synopsis() string {
	return "Show the stored session"
}

func (c *Command) Help() string {
	return `Usage: boardctl whoami [options]

  Prints the stored user details. If the access token is a JWT its expiry
  is shown as well.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("whoami", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.FormatVar(&c.flagFormat)
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

	out, err := describe(rt.Session, time.Now())
	if err != nil {
		logger.Debug("access token has no readable expiry", "error", err)
	}

	if err := c.Print(c.flagFormat, out); err != nil {
		ui.Error(err.Error())
		return 1
	}
	return 0
}

// describe builds the printed view. The returned error explains a missing
// expiry and does not invalidate the identity.
func describe(s *session.Session, now time.Time) (identity, error) {
	st := s.Snapshot()
	out := identity{
		LoggedIn:    st.IsLoggedIn,
		UserID:      st.UserID,
		UserName:    st.UserName,
		UserEmail:   st.UserEmail,
		Permissions: st.Permissions,
		HasToken:    st.Token != "",
	}

	exp, err := s.ExpiresAt()
	switch {
	case errors.Is(err, session.ErrNoToken):
		return out, nil
	case err != nil:
		return out, err
	case !exp.IsZero():
		out.ExpiresAt = &exp
		out.Expired = exp.Before(now)
	}
	return out, nil
}
