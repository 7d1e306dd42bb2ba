package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/basewire/basewire-go/pkg/basewire"
	"github.com/basewire/basewire-go/pkg/bwclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		collection string
		identity   string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against a Basewire instance",
		Long:  "Authenticate with an identity/password pair and persist the session for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := viper.GetString("api")
			if endpoint == "" {
				return ErrNoAPIEndpoint
			}

			reader := bufio.NewReader(os.Stdin)

			if identity == "" {
				fmt.Print("Identity (email or username): ")

				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading identity: %w", err)
				}

				identity = strings.TrimSpace(line)
			}

			if password == "" {
				fmt.Print("Password: ")

				raw, err := term.ReadPassword(int(syscall.Stdin))

				fmt.Println()

				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}

				password = string(raw)
			}

			ctx := context.Background()

			credPath, err := credentialPath()
			if err != nil {
				return err
			}

			client, err := bwclient.New(ctx, &basewire.Config{
				Endpoint:      endpoint,
				AuthStorePath: credPath,
				Debug:         viper.GetBool("verbose"),
			})
			if err != nil {
				return err
			}

			authResp, err := client.Collection(collection).AuthWithPassword(ctx, identity, password)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			err = saveEndpoint(client.BaseURL())
			if err != nil {
				return err
			}

			who := identity
			if authResp.Record != nil && authResp.Record.GetString("email") != "" {
				who = authResp.Record.GetString("email")
			}

			fmt.Printf("Logged in as %s (collection %q)\n", who, collection)

			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "users", "auth collection")
	cmd.Flags().StringVarP(&identity, "identity", "u", "", "identity (email or username)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			credPath, err := credentialPath()
			if err != nil {
				return err
			}

			err = os.Remove(credPath)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing credential: %w", err)
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}
