package server

import (
	"github.com/raysh454/guardscan/internal/app"
	"github.com/raysh454/guardscan/internal/genai"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/reputation"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	AppConfig *app.Config

	Logger logging.Logger

	// Reputation and Generator override the default provider clients when
	// non-nil. Tests inject fakes here.
	Reputation reputation.Client
	Generator  genai.Generator
}
