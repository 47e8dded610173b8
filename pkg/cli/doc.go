// Package cli provides command-line utilities shared by the atlas
// subcommands: typed command errors and signal-driven shutdown contexts.
package cli
