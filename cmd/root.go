package cmd

import (
	"fmt"
	"os"

	"github.com/redasGoluenko/Errando/cmd/flags"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "errando",
	Short: "Errando is a small task-assignment tracker",
	Long: `Errando is a small task-assignment tracker.
Clients post tasks, runners claim and work them, and both keep a status log.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetArgs([]string{"server"})
		cmd.Execute()
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&flags.DatabaseType, "db-type", envOr("ERRANDO_DB_TYPE", "sqlite"), "Database type: sqlite, mysql or postgres")
	pf.StringVarP(&flags.DatabaseFile, "database", "d", envOr("ERRANDO_DB_FILE", "./data/errando.db"), "SQLite database file")
	pf.StringVar(&flags.DatabaseHost, "db-host", envOr("ERRANDO_DB_HOST", "localhost"), "Database host")
	pf.StringVar(&flags.DatabasePort, "db-port", envOr("ERRANDO_DB_PORT", "3306"), "Database port")
	pf.StringVar(&flags.DatabaseUser, "db-user", envOr("ERRANDO_DB_USER", "root"), "Database user")
	pf.StringVar(&flags.DatabasePass, "db-pass", envOr("ERRANDO_DB_PASS", ""), "Database password")
	pf.StringVar(&flags.DatabaseName, "db-name", envOr("ERRANDO_DB_NAME", "errando"), "Database name")
	pf.StringVarP(&flags.ConfigFile, "config", "c", envOr("ERRANDO_CONFIG", ""), "YAML file with jwt_secret, token_ttl and token_issuer")
}
