package utils

import "github.com/google/uuid"

// NewInviteToken returns an opaque token for member invite redemption.
func NewInviteToken() string {
	return uuid.NewString()
}
