// Package middleware provides net/http adapters for authcore: bearer
// token guarding and client IP resolution. The engine itself never sees
// HTTP types; this package is the translation layer.
package middleware
