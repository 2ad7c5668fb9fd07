// Package credential owns the pickup secrets of a parcel: the numeric PIN and the
// optional generation token that defers PIN issuance.
//
// The Credential record lives apart from the parcel and is mutated only through
// Manager. PINs are stored as salt||PBKDF2-HMAC-SHA256(pin, salt) and tokens as a
// SHA-256 digest, so a stored record never reveals the secret it guards.
package credential
