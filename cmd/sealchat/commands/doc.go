// Package commands implements the sealchat CLI.
//
// Global flags:
//
//	--home        config directory (default ~/.sealchat)
//	-p            passphrase protecting the key files (or SEALCHAT_PASSPHRASE)
//	--identity    local identity name (or SEALCHAT_IDENTITY)
//	--relay       relay WebSocket URL (or SEALCHAT_RELAY_URL)
//	--log-level   debug|info|warn|error
//	--log-format  text|json
//
// Commands:
//
//	init                       create keys and write config.yaml
//	fingerprint                print the identity fingerprint and ID
//	room new                   print a fresh mnemonic room passphrase
//	room join <room> <pass>    store a room key
//	room leave <room>          forget a room key
//	room list                  list joined rooms
//	hash <text>                print both integrity hash forms
//	verify <text> <hash>       check text against a published hash
//	send <peer|room> <text>    send one message and exit
//	chat                       interactive session
package commands
