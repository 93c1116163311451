package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ms0ur/timeflow/internal/client"
)

var (
	loginRegister bool
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate against the timeflow server",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginRegister, "register", false, "Create a new account instead of logging in")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	email := strings.TrimSpace(args[0])
	password := loginPassword
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	var result *client.LoginResult
	if loginRegister {
		result, err = a.api.Register(cmd.Context(), email, password)
	} else {
		result, err = a.api.Login(cmd.Context(), email, password)
	}
	if err != nil {
		return err
	}

	a.cfg.Token = result.Token
	if err := a.cfg.Save(); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", result.User.Email)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
