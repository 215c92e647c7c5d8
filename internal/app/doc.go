// Package app wires application dependencies for the CLI.
//
// It loads Config (defaults, config.yaml, SEALCHAT_* environment), builds
// the encrypted stores and high-level services, and exposes them via the
// Wire struct for commands to use. Chat is the interactive front end that
// sits on top of the message and room services.
package app
