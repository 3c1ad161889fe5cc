package login

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/boardkit/boardclient/internal/cmd/base"
	"github.com/boardkit/boardclient/pkg/dispatch"
	"github.com/boardkit/boardclient/pkg/session"
)

// DefaultPath is the backend login endpoint.
const DefaultPath = "/api/user/login"

type Command struct {
	*base.Command

	flagConfig   string
	flagUsername string
	flagPassword string
	flagPath     string
}

// response is the login payload returned by the backend.
type response struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_nm"`
	Username    string `json:"username"`
	UserEmail   string `json:"user_email"`
	Permissions string `json:"permissions"`
}

func (r response) state() session.State {
	name := r.UserName
	if name == "" {
		name = r.Username
	}
	return session.State{
		Token:       r.AccessToken,
		UserID:      r.UserID,
		UserName:    name,
		UserEmail:   r.UserEmail,
		Permissions: r.Permissions,
		IsLoggedIn:  true,
	}
}

func (c *Command) Synopsis() string {
	return "Log in and store the session"
}

func (c *Command) Help() string {
	return `Usage: boardctl login [options]

  Sends the credentials as a form to the login endpoint and stores the
  returned access token and user details. Missing credentials are
  prompted for.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("login", flag.ContinueOnError))

	f.ConfigVar(&c.flagConfig)
	f.StringVar(&c.flagUsername, "username", "", "Account user name.")
	f.StringVar(&c.flagPassword, "password", "", "Account password.")
	f.StringVar(&c.flagPath, "path", DefaultPath, "Login endpoint path.")

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

	var err error
	if c.flagUsername == "" {
		if c.flagUsername, err = ui.Ask("Username:"); err != nil {
			ui.Error(fmt.Sprintf("error reading username: %v", err))
			return 1
		}
	}
	if c.flagPassword == "" {
		if c.flagPassword, err = ui.AskSecret("Password:"); err != nil {
			ui.Error(fmt.Sprintf("error reading password: %v", err))
			return 1
		}
	}

	rt, err := c.NewRuntime(ctx, c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	var (
		loginErr error
		loggedIn bool
	)
	rt.Dispatcher.Do(ctx, dispatch.Request{
		Operation: dispatch.OpLogin,
		Path:      c.flagPath,
		Params: dispatch.Params{
			"username": c.flagUsername,
			"password": c.flagPassword,
		},
		OnSuccess: func(resp *dispatch.Response) {
			if resp == nil {
				loginErr = errors.New("login response was empty")
				return
			}
			var body response
			if err := resp.Decode(&body); err != nil {
				loginErr = err
				return
			}
			if body.AccessToken == "" {
				loginErr = errors.New("login response has no access_token")
				return
			}
			if err := rt.Session.Login(ctx, body.state()); err != nil {
				loginErr = fmt.Errorf("error storing session: %w", err)
				return
			}
			loggedIn = true
		},
		OnFailure: func(resp *dispatch.Response) {
			loginErr = fmt.Errorf("login failed (%d): %s", resp.StatusCode, resp)
		},
	})

	if loginErr != nil {
		ui.Error(loginErr.Error())
		return 1
	}
	if !loggedIn {
		// The dispatcher has already reported the error.
		return 1
	}

	if err := rt.Cookies.Set(ctx, rt.Dispatcher.Cookies()); err != nil {
		logger.Warn("error saving cookies", "error", err)
	}

	st := rt.Session.Snapshot()
	logger.Debug("logged in", "user_id", st.UserID)
	ui.Output(fmt.Sprintf("Logged in as %s.", displayName(st)))

	return 0
}

func displayName(st session.State) string {
	switch {
	case st.UserName != "":
		return st.UserName
	case st.UserEmail != "":
		return st.UserEmail
	case st.UserID != "":
		return st.UserID
	default:
		return "unknown user"
	}
}
