// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"errors"
)

var ErrBadPassword = errors.New("invalid admin password")

// VerifyAdminPassword checks the provided password against the configured
// admin secret. The comparison is constant-time; the semantics are exact
// string equality (no hashing, no rotation).
func VerifyAdminPassword(provided, configured string) error {
	if configured == "" {
		// A blank configured secret would make every password valid.
		return ErrBadPassword
	}
	if !hmac.Equal([]byte(provided), []byte(configured)) {
		return ErrBadPassword
	}
	return nil
}
