package command

import (
	"fmt"
	"time"

	"booklease/cmd/booklease/authentication"
	"booklease/cmd/booklease/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// auth.go handles account commands: register, login, logout and whoami.

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the BookLease API server. The session token is kept in the OS keyring.`,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new BookLease account",
	RunE: func(cmd *cobra.Command, args []string) error {
		// get data from flags
		var req client.RegisterRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		req.FullName, _ = cmd.Flags().GetString("name")
		if phone, _ := cmd.Flags().GetString("phone"); phone != "" {
			req.Phone = &phone
		}

		ctx, cancel := commandContext()
		defer cancel()

		user, err := publicClient().Register(ctx, &req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		color.Green("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %d\n", user.UserID)
		return nil
	},
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your BookLease account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.LoginRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext()
		defer cancel()

		resp, err := publicClient().Login(ctx, &req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := authentication.StoreTokens(&authentication.StoredCredentials{
			Token:    resp.Token,
			UserID:   resp.User.UserID,
			Email:    resp.User.Email,
			APIURL:   apiURL,
			StoredAt: time.Now().Unix(),
		}); err != nil {
			return fmt.Errorf("could not save session: %w", err)
		}

		color.Green("✓ Logged in as %s", resp.User.FullName)
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		color.Green("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		user, err := c.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> (id %d)\n", user.FullName, user.Email, user.UserID)
		return nil
	},
}

// init function to add auth commands to root command
func init() {
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(authCmd)

	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("name", "n", "", "Full name")
	registerCmd.Flags().String("phone", "", "Phone number (optional)")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("name")

	loginCmd.Flags().StringP("email", "e", "", "Email address")
	loginCmd.Flags().StringP("password", "p", "", "Password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}
