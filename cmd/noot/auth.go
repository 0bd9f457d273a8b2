package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nootverse/noot"
)

var (
	loginIdentity   string
	loginCredential string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a credential for the given principal",
	Long: `login writes the credential file. Running engines (noot watch) pick the
new session up and reload their lists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if strings.TrimSpace(loginIdentity) == "" || strings.TrimSpace(loginCredential) == "" {
			fatal("Failed to sign in", fmt.Errorf("--identity and --credential are required"))
		}
		path, err := loadConfig().CredentialPath()
		if err != nil {
			fatal("Failed to locate credentials", err)
		}
		if err := noot.SaveCredentials(path, noot.Credentials{Identity: loginIdentity, Credential: loginCredential}); err != nil {
			fatal("Failed to save credentials", err)
		}
		fmt.Printf("Signed in as %s\n", loginIdentity)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := loadConfig().CredentialPath()
		if err != nil {
			fatal("Failed to locate credentials", err)
		}
		if err := noot.RemoveCredentials(path); err != nil {
			fatal("Failed to sign out", err)
		}
		fmt.Println("Signed out")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Ask the actor which principal the stored credential maps to",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, cleanup := openApp()
		defer cleanup()

		principal, err := app.Whoami(context.Background())
		if err != nil {
			fail(cleanup, "Failed to reach the actor", err)
		}
		session := app.Session()
		if session.Authenticated {
			fmt.Printf("%s (signed in as %s)\n", principal, session.Identity)
			return
		}
		fmt.Printf("%s (anonymous)\n", principal)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVar(&loginIdentity, "identity", "", "Principal the credential belongs to")
	loginCmd.Flags().StringVar(&loginCredential, "credential", "", "Opaque bearer credential")
}
