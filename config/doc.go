// Package config holds the shim's runtime settings.
//
// Settings come from command-line flags, MOKAPOT_* environment variables
// and an optional plain config file (-config), in that order of precedence.
// The native entry point has no command line and reads the environment
// only.
package config
