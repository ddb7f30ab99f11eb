// Package appconf holds application-level configuration shared across the
// loader, the scenario engine, and the command line entry point.
package appconf

import "strings"

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps a command line or config file environment name to
// an Environment. Unknown values fall back to Development.
func EnvFlagToEnvironment(flag string) Environment {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Config is the application configuration after parsing and validation.
type Config struct {
	Env     Environment
	Verbose bool
}
