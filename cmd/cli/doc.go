// Package cli builds the postsync command-line interface: the cobra root command, layered
// configuration loading, structured logging, and the sync subcommand.
package cli
