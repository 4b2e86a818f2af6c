// Package password provides argon2id hashing and verification for stored
// credentials. Hashes use the PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash), so parameters travel with the
// hash and verification works across configuration changes.
package password
