package cmd

import (
	"os"

	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var CreateAdminCmd = &cobra.Command{
	Use:     "create-admin",
	Short:   "Create an admin account",
	Long:    `Create an admin account. Admins cannot register through the API.`,
	Example: `errando create-admin -u root -e root@example.com -p <password>`,
	Run: func(cmd *cobra.Command, args []string) {
		if adminUsername == "" || adminPassword == "" {
			cmd.Help()
			return
		}
		dbcore.InitDatabase()
		user, err := accounts.CreateAdminAccount(adminUsername, adminEmail, adminPassword)
		if err != nil {
			cmd.Println("Error:", err)
			os.Exit(1)
		}
		cmd.Printf("Admin account %q created with id %d.\n", user.Username, user.ID)
	},
}

func init() {
	CreateAdminCmd.Flags().StringVarP(&adminUsername, "user", "u", "", "Username")
	CreateAdminCmd.Flags().StringVarP(&adminEmail, "email", "e", "", "Email, defaults to <user>@localhost")
	CreateAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "Password")
	RootCmd.AddCommand(CreateAdminCmd)
}
