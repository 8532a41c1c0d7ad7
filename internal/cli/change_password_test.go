package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("ENV", "test")

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		changePasswordKey, changePasswordURL = "", ""
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func newChangePasswordServer(t *testing.T) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.POST("/users/change-password", func(c echo.Context) error {
		var body struct {
			Key string `json:"change_password_key"`
		}
		if err := c.Bind(&body); err != nil {
			return err
		}
		if body.Key != "good" {
			return c.String(http.StatusNotFound, "change password key is invalid or expired")
		}
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestChangePasswordCommand_Success(t *testing.T) {
	srv := newChangePasswordServer(t)

	out, _, err := runCLI(t, "new-password\nnew-password\n", "change-password", "--key", "good", "--url", srv.URL)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Login using your new password.") || !strings.Contains(out, srv.URL+"/login") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestChangePasswordCommand_Mismatch(t *testing.T) {
	srv := newChangePasswordServer(t)

	_, errOut, err := runCLI(t, "one-password\nother-password\n", "change-password", "--key", "good", "--url", srv.URL)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(errOut, "Passwords do not match.") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestChangePasswordCommand_StaleKey(t *testing.T) {
	srv := newChangePasswordServer(t)

	_, errOut, err := runCLI(t, "new-password\nnew-password\n", "change-password", "--key", "stale", "--url", srv.URL)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(errOut, "change password key is invalid or expired") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}
