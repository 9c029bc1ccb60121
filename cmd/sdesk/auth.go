package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/supportdesk-io/sdesk/internal/session"
	"github.com/supportdesk-io/sdesk/internal/types"
)

var (
	emailFlag    string
	passwordFlag string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend and store the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		auth.Logout()
		fmt.Println("Logged out.")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE:  runWhoami,
}

var (
	registerNameFlag string
	registerRoleFlag string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new backend account",
	RunE:  runRegister,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check backend reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Backend %s is reachable.\n", api.BaseURL())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "Account email")
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&emailFlag, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&passwordFlag, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerNameFlag, "name", "", "Display name (required)")
	registerCmd.Flags().StringVar(&registerRoleFlag, "role", "agent", "Account role (agent or admin)")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd, pingCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := emailFlag
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	password := passwordFlag
	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	identity, err := auth.Login(cmd.Context(), types.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", identity.UserID, identity.Role)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	identity, err := auth.WhoAmI(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("User ID: %s\nRole:    %s\n", identity.UserID, identity.Role)
	if exp, ok := holder.ExpiresAt(); ok {
		fmt.Printf("Expires: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password := passwordFlag
	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}
	user, err := auth.Register(cmd.Context(), session.RegisterRequest{
		Name:     registerNameFlag,
		Email:    emailFlag,
		Password: password,
		Role:     types.Role(registerRoleFlag),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %s <%s> (%s), id %s\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
