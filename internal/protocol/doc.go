// Package protocol owns the agent wire contract.
//
// Ownership boundary:
// - endpoint names and positional argument order
// - response header handling and fixed result frame decode
// - file transfer descriptor and option encoding
// - agent-side reply encoding
// - the error taxonomy shared by local and remote strategies
package protocol
