// Package app wires configuration, storage and the HTTP server together.
package app

// Command is a commentbox subcommand.
type Command string

const (
	// CommandServe runs the HTTP server.
	CommandServe Command = "serve"
	// CommandMigrate applies database migrations and exits.
	CommandMigrate Command = "migrate"
)

// ParseCommand returns the subcommand named by args[0]. Missing or
// unknown subcommands mean CommandServe.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	switch args[0] {
	case "migrate":
		return CommandMigrate
	default:
		return CommandServe
	}
}
