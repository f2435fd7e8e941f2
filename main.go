// Command guardscan starts the scan aggregator API server.
//
// Configuration comes from the environment (optionally via a .env file):
// PORT, STORAGE_ROOT, VIRUSTOTAL_API_KEY, GEMINI_API_KEY.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/raysh454/guardscan/internal/app"
	"github.com/raysh454/guardscan/internal/cli"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/server"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parsing arguments: %v", err)
	}

	if args.EnvFile != "" {
		if err := godotenv.Load(args.EnvFile); err != nil {
			log.Fatalf("loading env file %s: %v", args.EnvFile, err)
		}
	} else {
		// Best effort: a missing .env just means plain environment config.
		_ = godotenv.Load()
	}

	appCfg := app.DefaultConfig()
	appCfg.Reputation.APIKey = os.Getenv("VIRUSTOTAL_API_KEY")
	appCfg.GenAI.APIKey = os.Getenv("GEMINI_API_KEY")
	if root := os.Getenv("STORAGE_ROOT"); root != "" {
		appCfg.StorageRoot = root
	}
	if args.StorageRoot != "" {
		appCfg.StorageRoot = args.StorageRoot
	}

	addr := args.Addr
	if addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "5000"
		}
		addr = ":" + port
	}

	logger := logging.NewStdoutLogger("guardscan")

	srv, err := server.NewServer(server.Config{
		ListenAddr: addr,
		AppConfig:  appCfg,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	defer srv.Close()

	logger.Info("server starting", logging.Field{Key: "addr", Value: addr})
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
