// Package driving defines the inbound ports of the sync core: the
// interfaces through which the CLI, TUI and scheduler drive the review
// workflow and the automatic sync path.
package driving
