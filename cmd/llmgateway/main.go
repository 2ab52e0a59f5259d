// Package main is the entry point for the llmgateway demo server: an
// OpenAI-compatible HTTP front end over the llm package's unified
// completion client.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	llm "github.com/jannisai/llmsdk"
	"github.com/jannisai/llmsdk/internal/config"
	"github.com/jannisai/llmsdk/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	opts := []llm.Option{llm.WithAPIKeysFromEnv()}
	for name, provCfg := range cfg.Providers {
		if provCfg.APIKey != "" {
			opts = append(opts, llm.WithAPIKey(name, provCfg.APIKey))
		}
		if provCfg.BaseURL != "" {
			opts = append(opts, llm.WithBaseURL(name, provCfg.BaseURL))
		}
	}
	client := llm.NewClient(opts...)

	srv := server.New(cfg, client)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("llmgateway listening on :%d", cfg.Server.Port)

	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
