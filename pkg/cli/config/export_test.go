package config

import "time"

var ParseLevel = parseLevel

// NewDirectoryForTest creates a Directory config for testing purposes
func NewDirectoryForTest(path string, interval time.Duration) *Directory {
	return &Directory{path: path, refreshInterval: interval}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(secret string, noAuthnAs int64) *Auth {
	return &Auth{tokenSecret: secret, noAuthnAs: noAuthnAs}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewClientForTest creates a Client config for testing purposes
func NewClientForTest(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
