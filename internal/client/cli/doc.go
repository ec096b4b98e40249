// Package cli provides the interactive profile client.
//
// It wires configuration, the local keystore, the node connection and the
// application controller into a small REPL:
//
//	wallet new | wallet list | wallet use <address>
//	connect | disconnect
//	submit | me | search <address> | balance
//	status | help | exit
//
// Status banners are printed as they are set; the prompt shows the connected
// account and the banner that is still live. App.Run blocks until the user
// exits or input ends.
package cli
