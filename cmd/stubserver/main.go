// Command stubserver starts a local stand-in for the reputation and
// generative providers.
// Usage: go run ./cmd/stubserver [port]
// Default port: 9099
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/guardscan/internal/stubserver"
)

func main() {
	cfg := stubserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("  Guardscan Stub Providers")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Emulates the reputation and generative provider")
	fmt.Println("endpoints so the scan pipeline can run end-to-end")
	fmt.Println("without API keys.")
	fmt.Println()
	fmt.Printf("Point the server at it with:\n")
	fmt.Printf("  reputation base URL http://localhost:%d/api/v3\n", cfg.Port)
	fmt.Printf("  genai endpoint      http://localhost:%d/v1beta\n", cfg.Port)
	fmt.Println()

	server := stubserver.NewStubServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
