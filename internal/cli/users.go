package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users (admin/manager only)",
	RunE:  runUsers,
}

var userToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle a user's active flag (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserToggle,
}

func init() {
	usersCmd.AddCommand(userToggleCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	users, err := e.Client.Users(context.Background())
	if err != nil {
		return err
	}
	for _, u := range users {
		line := fmt.Sprintf("%4d  %-20s %-30s %-10s", u.ID, u.Name, u.Email, u.Role.Name)
		if !u.IsActive {
			line += "  inactive"
		}
		fmt.Println(line)
	}
	return nil
}

func runUserToggle(cmd *cobra.Command, args []string) error {
	e, err := requireSession()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	user, err := e.Client.ToggleActivation(context.Background(), id)
	if err != nil {
		return err
	}
	state := "active"
	if !user.IsActive {
		state = "inactive"
	}
	fmt.Printf("User %s is now %s\n", user.Name, state)
	return nil
}
