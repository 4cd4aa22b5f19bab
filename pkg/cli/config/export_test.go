package config

import "time"

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwtSecret string, tokenTTL time.Duration, noAuth string) *Auth {
	return &Auth{jwtSecret: jwtSecret, tokenTTL: tokenTTL, noAuth: noAuth}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewAppConfigForTest creates an AppConfig pointing at path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}
