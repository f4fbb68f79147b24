package cmd

import (
	"os"

	"github.com/redasGoluenko/Errando/database/config"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/spf13/cobra"
)

var RegistrationCmd = &cobra.Command{
	Use:       "registration [on|off]",
	Short:     "Allow or forbid self registration",
	Long:      `Allow or forbid self registration of client and runner accounts`,
	Example:   `errando registration off`,
	ValidArgs: []string{"on", "off"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		dbcore.InitDatabase()
		defer WatchSettings()()
		allow := args[0] == "on"
		if _, err := config.Update(config.Patch{AllowRegistration: &allow}); err != nil {
			cmd.Println("Error:", err)
			os.Exit(1)
		}
		if allow {
			cmd.Println("Registration has been permitted.")
		} else {
			cmd.Println("Registration has been forbidden.")
		}
	},
}

func init() {
	RootCmd.AddCommand(RegistrationCmd)
}
