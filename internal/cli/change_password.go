package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/commuteplanner/planner/internal/web/changepassword"
)

var (
	changePasswordKey string
	changePasswordURL string
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change a password with an emailed change-password key",
	RunE:  runChangePassword,
}

func init() {
	changePasswordCmd.Flags().StringVar(&changePasswordKey, "key", "", "change-password key from the email")
	changePasswordCmd.Flags().StringVar(&changePasswordURL, "url", "", "planner base URL (default: APP_URL)")
	_ = changePasswordCmd.MarkFlagRequired("key")
}

// terminalUI reports view outcomes on the command's output streams.
type terminalUI struct {
	out, errOut io.Writer
}

func (u *terminalUI) Alert(message string) {
	fmt.Fprintln(u.errOut, message)
}

func (u *terminalUI) Notify(n changepassword.Notification) {
	fmt.Fprintf(u.out, "[%s] %s\n", n.Type, n.Text)
}

func (u *terminalUI) Go(path string) {
	fmt.Fprintf(u.out, "Next: %s%s\n", strings.TrimRight(changePasswordURL, "/"), path)
}

func runChangePassword(cmd *cobra.Command, _ []string) error {
	if changePasswordURL == "" {
		changePasswordURL = cfg.AppURL
	}

	in := bufio.NewReader(cmd.InOrStdin())
	password, err := prompt(cmd.OutOrStdout(), in, "New password: ")
	if err != nil {
		return err
	}
	repeat, err := prompt(cmd.OutOrStdout(), in, "Repeat password: ")
	if err != nil {
		return err
	}

	ui := &terminalUI{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	view := changepassword.NewView(changePasswordKey, changepassword.NewHTTPPoster(changePasswordURL, 15*time.Second), ui)

	if state := view.ChangePassword(cmd.Context(), password, repeat); state != changepassword.StateSuccess {
		return errors.New("password not changed")
	}
	return nil
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
