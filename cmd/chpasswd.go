package cmd

import (
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/spf13/cobra"
)

var (
	Username    string
	NewPassword string
)

var ChpasswdCmd = &cobra.Command{
	Use:     "chpasswd",
	Short:   "Force change password",
	Long:    `Force change password and sign the account out everywhere`,
	Example: `errando chpasswd -u admin -p <password>`,
	Run: func(cmd *cobra.Command, args []string) {
		if Username == "" || NewPassword == "" {
			cmd.Help()
			return
		}
		if !dbcore.InitDatabase() {
			cmd.Println("Database did not exist, nothing to change.")
			return
		}
		user, err := accounts.GetUserByUsername(Username)
		if err != nil {
			cmd.Println("Error:", err)
			return
		}
		cmd.Println("Changing password for user:", user.Username)
		if err := accounts.ForceResetPassword(user.Username, NewPassword); err != nil {
			cmd.Println("Error:", err)
			return
		}
		cmd.Println("Password changed successfully.")

		if err := accounts.DeleteUserSessions(user.ID); err != nil {
			cmd.Println("Unable to force logout of other devices:", err)
			return
		}
	},
}

func init() {
	ChpasswdCmd.PersistentFlags().StringVarP(&Username, "user", "u", "admin", "The username of the account to change password")
	ChpasswdCmd.PersistentFlags().StringVarP(&NewPassword, "password", "p", "", "New password")
	RootCmd.AddCommand(ChpasswdCmd)
}
