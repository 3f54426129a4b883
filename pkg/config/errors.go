package config

import "errors"

var (
	// ErrLoadEnvFile indicates a .env file exists but could not be read.
	ErrLoadEnvFile = errors.New("failed to load .env file")
	// ErrParseConfig indicates environment parsing into the struct failed.
	ErrParseConfig = errors.New("failed to parse config from environment")
)
