package cli

import (
	"github.com/steady-app/steady/internal/daemon"
)

// openDaemon wires the full service stack for a one-shot CLI command.
func openDaemon() (*daemon.Daemon, error) {
	return daemon.New()
}

// actingUser resolves the user id: --user flag first, then config.
func actingUser(d *daemon.Daemon) string {
	if flagUser != "" {
		return flagUser
	}
	return d.Config.User.ID
}

// timezone resolves the timezone: --tz flag first, then config.
func timezone(d *daemon.Daemon) string {
	if flagTZ != "" {
		return flagTZ
	}
	if d.Config.User.Timezone != "" {
		return d.Config.User.Timezone
	}
	return "UTC"
}
