package notify

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUINotifier_Alert(t *testing.T) {
	ui := cli.NewMockUi()
	n := &UINotifier{UI: ui}

	n.Alert("Login is required.")

	assert.Equal(t, "Login is required.\n", ui.ErrorWriter.String())
	assert.Empty(t, ui.OutputWriter.String())
}

func TestBrowserNavigator_OpensResolvedURL(t *testing.T) {
	var opened []string
	n := NewBrowserNavigator("http://localhost:5173/", hclog.NewNullLogger())
	n.open = func(u string) error {
		opened = append(opened, u)
		return nil
	}

	n.Navigate("/")
	n.Replace("/sys/")

	assert.Equal(t, []string{"http://localhost:5173/", "http://localhost:5173/sys/"}, opened)
}

func TestBrowserNavigator_OpenFailureIsLogged(t *testing.T) {
	n := NewBrowserNavigator("http://localhost:5173", nil)
	calls := 0
	n.open = func(string) error {
		calls++
		return errors.New("no display")
	}

	assert.NotPanics(t, func() { n.Navigate("/") })
	assert.Equal(t, 1, calls)
}

func TestBrowserNavigator_InvalidBase(t *testing.T) {
	n := NewBrowserNavigator("not a url", nil)
	n.open = func(string) error {
		t.Fatal("open must not be called for an invalid base url")
		return nil
	}

	n.Navigate("/")
}

func TestLogNavigator_TracksCurrent(t *testing.T) {
	n := NewLogNavigator(nil)
	assert.Empty(t, n.Current())

	n.Navigate("/")
	assert.Equal(t, "/", n.Current())

	n.Replace("/sys/")
	assert.Equal(t, "/sys/", n.Current())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "root", base: "http://127.0.0.1:8000", path: "/", want: "http://127.0.0.1:8000/"},
		{name: "trailing slash base", base: "https://board.example.com/", path: "/sys/", want: "https://board.example.com/sys/"},
		{name: "relative path", base: "https://board.example.com/app", path: "detail/1", want: "https://board.example.com/app/detail/1"},
		{name: "relative base", base: "/only/path", path: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.base, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
