// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key and hashing utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionName, salt)
	err := auth.ValidateAdminKey(electionName, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same election name and salt always produce the same key. This allows
validation without storing the key in the database.

# Hashing

For privacy-preserving request logs:

	ipHash := auth.HashIP(ipAddress, salt)
	voterHash := auth.HashVoterID(nationalID, salt)

Both return the first 8 bytes (16 hex chars) of a domain-separated HMAC-SHA256.
*/
package auth
