// Package config loads application configuration from environment variables.
//
// A missing remote endpoint/credential pair is a mode switch, not a failure:
// RemoteConfigured reports false and the application runs against the local
// fallback cache for the whole session.
package config
