package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notemate/notemate/internal/client"
	"github.com/notemate/notemate/internal/errs"
)

var (
	signupName     string
	signupEmail    string
	signupPassword string
	loginEmail     string
	loginPassword  string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a NoteMate account and log in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := newStore()
		remote := client.NewAPIClient(serverURL)

		result, err := remote.Signup(context.Background(), signupName, signupEmail, signupPassword)
		if err != nil {
			fatal("Signup failed", err)
		}

		saveSession(store, result.Token, result.UserID, signupName)
		fmt.Printf("Welcome to NoteMate, %s!\n", signupName)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a NoteMate server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := newStore()
		remote := client.NewAPIClient(serverURL)

		result, err := remote.Login(context.Background(), loginEmail, loginPassword)
		if err != nil {
			fatal("Login failed", err)
		}

		remote.SetToken(result.Token)
		name := ""
		if me, err := remote.Me(context.Background()); err == nil {
			name = me.Name
		}

		saveSession(store, result.Token, result.UserID, name)
		if name != "" {
			fmt.Printf("Logged in as %s\n", name)
		} else {
			fmt.Println("Logged in")
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the current session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		newStore().ClearSession()
		fmt.Println("Logged out")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := newStore()
		remote := newAPIClient(store)

		me, err := remote.Me(context.Background())
		if err != nil {
			// A 404 means the token is fine but the account is gone;
			// the stale session is useless either way.
			if errs.CodeOf(err) == errs.NotFound || errs.CodeOf(err) == errs.Unauthenticated {
				store.ClearSession()
				fatal("Session is no longer valid, please log in again", err)
			}
			fatal("Could not reach server", err)
		}
		fmt.Printf("%s <%s>\n", me.Name, me.Email)
	},
}

func saveSession(store *client.Store, token, userID, name string) {
	if err := store.Set(client.ScopeSession, client.KeyAuthToken, token); err != nil {
		fatal("Failed to save session", err)
	}
	_ = store.Set(client.ScopeSession, client.KeyUserID, userID)
	if name != "" {
		_ = store.Set(client.ScopeSession, client.KeyUserName, name)
	}
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	signupCmd.Flags().StringVar(&signupName, "name", "", "Display name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Password")
	signupCmd.MarkFlagRequired("name")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}
