// Package config loads configuration structs from environment
// variables (and optional .env files) using `env` struct tags.
//
// Every configurable package in this module declares its own
// env-tagged Config struct; this package is only the loading
// mechanism, shared so precedence rules stay consistent.
package config
