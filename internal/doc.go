// Package internal holds helpers shared by the engine's subsystems:
// token generation and identity hashing.
package internal
