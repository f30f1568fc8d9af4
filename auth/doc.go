// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies the shared admin credential.

# Admin Password

The admin gate is a single shared secret configured via ADMIN_PASSWORD:

	if err := auth.VerifyAdminPassword(provided, cfg.AdminPassword); err != nil {
		// 401
	}

Verification is exact string equality performed with a constant-time
compare (hmac.Equal). There is no hashing, key derivation, or rotation;
upgrading the credential scheme is a deliberate non-goal.

An empty configured secret never matches, so a deployment that forgot to
set ADMIN_PASSWORD fails closed (cliparse also rejects that configuration
at startup).

# Authentication vs Mutation

Credential verification is a standalone operation. The /admin/verify
endpoint calls this package and nothing else - checking a password never
reads or writes the stored counter.
*/
package auth
