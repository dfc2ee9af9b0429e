// Package password provides argon2id hashing with PHC-encoded output.
// Verification reads cost parameters from the stored string, so cost
// upgrades apply to new hashes without invalidating old ones.
package password
