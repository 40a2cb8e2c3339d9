package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	userName string
	userRole string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Create or replace a login account",
	Long: `Create or replace the account for email. The password is read from the
terminal without echo, or from the first line of stdin when piped.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVarP(&userName, "name", "n", "", "display name (default: the email)")
	userAddCmd.Flags().StringVarP(&userRole, "role", "r", "user", "account role")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	email := args[0]

	cmd.Print("Password: ")
	password, err := readPassword(cmd, bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	name := userName
	if name == "" {
		name = email
	}
	user := domain.User{Email: email, Username: name, Role: userRole}
	if err := app.Auth.Register(cmd.Context(), user, password); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	cmd.Printf("User %s saved.\n", email)
	return nil
}

// readPassword reads without echo from a terminal, else one line from reader.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	cmd.Println()
	return strings.TrimRight(line, "\r\n"), nil
}
