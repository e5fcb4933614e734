package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/sduigate/pkg/audio"
	"github.com/haivivi/sduigate/pkg/gateway"
	"github.com/haivivi/sduigate/pkg/speech"
)

var (
	flagConfig  string
	flagListen  string
	flagConsole bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gateway server",
	Long: `Run the SDUI gateway server.

Collaborator credentials come from the config file or environment:
  openai: OPENAI_API_KEY
  gemini: GEMINI_API_KEY

Examples:
  sduigate run --config gateway.yaml
  sduigate run --listen :9000 --console`,
	RunE: runServer,
}

func init() {
	runCmd.Flags().StringVarP(&flagConfig, "config", "f", "", "YAML config file")
	runCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
	runCmd.Flags().BoolVar(&flagConsole, "console", false, "start the operator console on stdin")

	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg := gateway.DefaultConfig()
	if flagConfig != "" {
		var err error
		cfg, err = gateway.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	stt, llm, tts, err := buildCollaborators(ctx, cfg)
	if err != nil {
		// A missing collaborator at startup is the one fatal error.
		return err
	}

	registry := gateway.NewRegistry(logger)
	pipeline := gateway.NewPipeline(cfg, stt, llm, tts, logger)
	router := gateway.NewRouter(ctx, cfg, registry, pipeline, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", router)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"sessions": registry.Len(),
		})
	})

	if flagConsole {
		console := gateway.NewConsole(registry, os.Stdin, os.Stdout, logger)
		go func() {
			if err := console.Run(); err != nil {
				logger.Error("console error", "error", err)
			}
		}()
	}

	server := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	logger.Info("gateway listening", "addr", cfg.Listen, "completer", cfg.Completer)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// buildCollaborators wires the STT, completion, and TTS backends from the
// config. Transcription and synthesis always use the OpenAI provider; the
// completer is selectable.
func buildCollaborators(ctx context.Context, cfg gateway.Config) (speech.Transcriber, speech.Completer, speech.Synthesizer, error) {
	captureFormat := cfg.CaptureFormat()
	openaiProvider, err := speech.NewOpenAI(cfg.OpenAI, captureFormat, audio.Terminal)
	if err != nil {
		return nil, nil, nil, err
	}

	var llm speech.Completer
	switch cfg.Completer {
	case "openai":
		llm = openaiProvider
	case "gemini":
		llm, err = speech.NewGemini(ctx, cfg.Gemini)
		if err != nil {
			return nil, nil, nil, err
		}
	default:
		return nil, nil, nil, fmt.Errorf("unknown completer %q (want openai or gemini)", cfg.Completer)
	}

	return openaiProvider, llm, openaiProvider, nil
}
