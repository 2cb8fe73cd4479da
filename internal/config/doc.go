// Package config provides configuration management for rostercli.
//
// # Configuration Sources
//
// Configuration is layered, later layers winning:
//
//	1. Default values (Default)
//	2. YAML file (ROSTER_CONFIG, roster.yaml or configs/roster.yaml)
//	3. Environment variables, including those loaded from a .env file
//
// # Environment Variables
//
// All environment variables follow the pattern ROSTER_<SECTION>_<FIELD>:
//
//	ROSTER_DATA_DIR=./data
//	ROSTER_PARSING_DELIMITER=;
//	ROSTER_PARSING_SUBJECTS=Math,Science,English
//	ROSTER_PARSING_UNKNOWN_STUDENTS=reject
//	ROSTER_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the result with struct tags and a few cross-field checks.
// The delimiter must be exactly one character and must not be a comma,
// since marks fields are comma-joined lists.
package config
