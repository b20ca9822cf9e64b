package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/pmdesk/internal/api"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Log in and out of the project management server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the current account's name or email",
	RunE:  runProfile,
}

var passwordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the current account's password",
	Long: `Change the current account's password. A successful change ends the
session; log in again with the new password.`,
	RunE: runChangePassword,
}

var (
	loginEmail   string
	registerName string
	registerRole int
	profileName  string
	profileEmail string
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(profileCmd)
	authCmd.AddCommand(passwordCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	registerCmd.Flags().IntVar(&registerRole, "role", 3, "Role id (2=manager, 3=developer)")
	profileCmd.Flags().StringVar(&profileName, "name", "", "New display name")
	profileCmd.Flags().StringVar(&profileEmail, "email", "", "New email")
}

// promptLine reads one trimmed line from stdin
func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := e.Store.Login(context.Background(), email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role.Name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	e.Store.Logout()
	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	user := e.Store.User()
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s active=%t\n", user.Name, user.Email, user.Role.Name, user.IsActive)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	name := registerName
	if name == "" {
		if name, err = promptLine("Name: "); err != nil {
			return err
		}
	}
	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := e.Client.Register(context.Background(), api.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		RoleID:   registerRole,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created account %s (%s)\n", user.Name, user.Role.Name)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	if profileName == "" && profileEmail == "" {
		return fmt.Errorf("nothing to update, pass --name or --email")
	}

	ctx := context.Background()
	user, err := e.Client.UpdateMe(ctx, api.UserUpdate{Name: profileName, Email: profileEmail})
	if err != nil {
		return err
	}
	if err := e.Store.Refresh(ctx); err != nil {
		return err
	}
	fmt.Printf("Profile updated: %s <%s>\n", user.Name, user.Email)
	return nil
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	updated, err := promptPassword("New password: ")
	if err != nil {
		return err
	}

	if err := e.Store.ChangePassword(context.Background(), current, updated); err != nil {
		return err
	}
	fmt.Println("Password changed, please log in again")
	return nil
}
