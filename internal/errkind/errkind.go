// Package errkind defines the error taxonomy connections, matches and the
// lobby manager use to decide how to react to a failure (drop the
// connection only, substitute a computer player, disband the match, or
// propagate to the admin console).
package errkind

import "errors"

var (
	// FatalLock means a bounded-wait lock timed out or was abandoned.
	// Logged as "[FATAL!]" and propagated up to tear down the owning task.
	FatalLock = errors.New("fatal lock error")

	// ClientDisconnected means the peer closed the socket or a read/send
	// timed out. The owning connection task exits cleanly.
	ClientDisconnected = errors.New("client disconnected")

	// ProtocolError means malformed framing, an invalid signature, a
	// checksum mismatch, an illegal state transition, or an invalid move.
	// The connection is dropped without any in-band diagnostic to the peer.
	ProtocolError = errors.New("protocol error")

	// ConfigError means bad XML or a bad CLI option value. A bad value given
	// to the admin console's "c" command is reported there and the server
	// keeps running. A config file that cannot be read, parsed or (when
	// missing) written makes config.Load return this error, and
	// cmd/boardserver then exits instead of falling back to defaults.
	ConfigError = errors.New("configuration error")

	// LogicalDisconnect means a peer asked to be disconnected cleanly, e.g.
	// a banner-ad request.
	LogicalDisconnect = errors.New("logical disconnect")
)
