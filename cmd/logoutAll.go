package cmd

import (
	"os"

	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/spf13/cobra"
)

var LogoutAllCmd = &cobra.Command{
	Use:   "logout-all",
	Short: "Force logout of every session",
	Long:  `Force logout of every session. Issued tokens stop working immediately.`,
	Run: func(cmd *cobra.Command, args []string) {
		dbcore.InitDatabase()
		if err := accounts.DeleteAllSessions(); err != nil {
			cmd.Println("Error:", err)
			os.Exit(1)
		}
		cmd.Println("All sessions have been removed.")
	},
}

func init() {
	RootCmd.AddCommand(LogoutAllCmd)
}
