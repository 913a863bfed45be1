package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/chartapp/chartapp-services/internal/credentials"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	suEmail    string
	suUsername string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser account",
	Long:  `Creates a user with staff and superuser rights. The password is read from $SUPERUSER_PASSWORD.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		commonSetUp(ctx)
		defer closeStore()

		user, err := credentials.CreateSuperuser(ctx, store, credentials.NewUser{
			Email:    suEmail,
			Username: suUsername,
			Password: os.Getenv("SUPERUSER_PASSWORD"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create superuser")
		}

		fmt.Printf("Superuser %s created with id %d\n", user.Email, user.ID)
	},
}

func init() {
	rootCmd.AddCommand(createSuperuserCmd)
	createSuperuserCmd.Flags().StringVar(&suEmail, "email", "", "email address of the superuser")
	createSuperuserCmd.Flags().StringVar(&suUsername, "username", "", "display name of the superuser")
	createSuperuserCmd.MarkFlagRequired("email")
	createSuperuserCmd.MarkFlagRequired("username")
}
