// Package config loads typed configuration structs from environment
// variables using caarlos0/env struct tags, with optional .env file support
// via godotenv. Parsed configurations are cached per type so the whole
// process shares one view of the environment.
package config
