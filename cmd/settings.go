package cmd

import (
	"fmt"
	"log"

	"github.com/redasGoluenko/Errando/database/auditlog"
	"github.com/redasGoluenko/Errando/database/config"
)

// describeChange renders one changed setting for the audit log.
func describeChange(c config.Change, s config.Setting) string {
	switch s {
	case config.SettingSitename:
		return fmt.Sprintf("site name changed from %q to %q", c.Old.Sitename, c.New.Sitename)
	case config.SettingAllowRegistration:
		if c.New.AllowRegistration {
			return "registration opened"
		}
		return "registration closed"
	case config.SettingAllowCors:
		return fmt.Sprintf("cors set to %t, restart the server to apply it", c.New.AllowCors)
	default:
		return string(s) + " changed"
	}
}

// WatchSettings records every settings change in the audit log, whether it
// came through the admin API or the command line.
func WatchSettings() (unsubscribe func()) {
	return config.Subscribe(func(c config.Change) {
		for _, s := range c.Changed {
			msg := describeChange(c, s)
			if s == config.SettingAllowCors {
				log.Println(msg)
			}
			auditlog.EventLog("settings", msg)
		}
	})
}
