package cmd

import (
	"log"
	"time"

	"github.com/redasGoluenko/Errando/cmd/flags"
	"github.com/redasGoluenko/Errando/database/accounts"
	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/config"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/utils/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the server",
	Long:  `Start the server`,
	Run: func(cmd *cobra.Command, args []string) {
		issuer, err := NewIssuer()
		if err != nil {
			log.Fatalln("Failed to configure tokens:", err)
		}

		InitDatabase()

		go DoCleanupWork()

		r := gin.Default()
		cfg, err := config.Get()
		if err != nil {
			log.Fatalln("Failed to get config:", err)
		}

		if cfg.AllowCors || flags.Cors {
			r.Use(cors.New(cors.Config{
				AllowOrigins:     []string{"*"},
				AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
				ExposeHeaders:    []string{"Content-Length", "Location"},
				AllowCredentials: false,
				MaxAge:           12 * time.Hour,
			}))
		}
		WatchSettings()

		SetupRoutes(r, issuer)

		auditlog.EventLog("info", "server started on "+flags.Listen)
		if err := r.Run(flags.Listen); err != nil {
			log.Fatalln("Server stopped:", err)
		}
	},
}

func init() {
	ServerCmd.PersistentFlags().StringVarP(&flags.Listen, "listen", "l", envOr("ERRANDO_LISTEN", "0.0.0.0:5000"), "Listen address")
	ServerCmd.PersistentFlags().BoolVar(&flags.Cors, "cors", false, "Enable CORS regardless of the site setting")
	RootCmd.AddCommand(ServerCmd)
}

// NewIssuer builds the token issuer from the auth configuration. A missing
// signing secret is an error.
func NewIssuer() (*token.Issuer, error) {
	auth, err := flags.LoadAuth(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	return token.NewIssuer(token.Config{
		Secret: auth.JWTSecret,
		TTL:    auth.TokenTTL,
		Issuer: auth.Issuer,
	})
}

// InitDatabase opens and migrates the database and makes sure an admin
// account exists.
func InitDatabase() {
	dbcore.InitDatabase()
	has, err := accounts.HasAdmin()
	if err != nil {
		log.Fatalln("Failed to look up admin accounts:", err)
	}
	if has {
		return
	}
	user, passwd, err := accounts.CreateDefaultAdminAccount()
	if err != nil {
		log.Fatalln("Failed to create default admin account:", err)
	}
	log.Println("Default admin account created. Username:", user, ", Password:", passwd)
}

func DoCleanupWork() {
	ticker := time.NewTicker(time.Hour)
	cleanup := func() {
		if n, err := accounts.DeleteExpiredSessions(time.Now()); err != nil {
			log.Println("Failed to remove expired sessions:", err)
		} else if n > 0 {
			log.Printf("Removed %d expired sessions", n)
		}
		auditlog.RemoveOldLogs()
	}
	cleanup()
	for range ticker.C {
		cleanup()
	}
}
