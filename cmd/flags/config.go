package flags

var (
	// Database
	DatabaseType string // sqlite, mysql, postgres
	DatabaseFile string // sqlite database file
	DatabaseHost string
	DatabasePort string
	DatabaseUser string
	DatabasePass string
	DatabaseName string

	Listen     string
	ConfigFile string // optional YAML file with the auth settings
	Cors       bool   // force CORS on regardless of the site setting
)
