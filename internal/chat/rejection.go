// Package chat defines the close codes and rejection error used to report
// failed admission attempts back to the transport layer.
package chat

import "fmt"

// Close codes sent with each admission rejection. Every reason maps to its
// own code so clients can tell rejections apart.
const (
	CloseVerificationError     = 4000
	CloseInvalidToken          = 4001
	CloseConnectionRateLimited = 4002
	CloseDuplicateIdentity     = 4003
	CloseUnauthorizedOrigin    = 4004
	CloseInternalError         = 4005
)

// RejectionError describes why an admission attempt was refused. By the time
// it is returned the connection has already been closed with the carried
// code/reason pair.
type RejectionError struct {
	Code   int
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("admission rejected (%d): %s", e.Code, e.Reason)
}
