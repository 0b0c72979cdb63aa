package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aussiebroadwan/sfconnect/pkg/sfclient"
	"github.com/aussiebroadwan/sfconnect/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application runs single operations against an org using one client.
type Application struct {
	cfg    Config
	logger *slog.Logger
	out    io.Writer

	client *sfclient.Client
}

// New creates a new Application with its client configured from cfg.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		out: cfg.Output,
		logger: slogx.New(slogx.Config{
			Service: "sfconnect",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	if app.out == nil {
		app.out = os.Stdout
	}

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	clientCfg.Logger = app.logger

	client, err := sfclient.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	app.client = client

	return app, nil
}

// Run invokes operation with the JSON-encoded options and writes the result
// to the configured output. Interrupts cancel the invocation.
func (app *Application) Run(ctx context.Context, operation, rawOptions string) error {
	opts, err := decodeOptions(rawOptions)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.cfg.InvokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.cfg.InvokeTimeout)
		defer cancel()
	}

	app.logger.Debug("invoking", "operation", operation)

	res, err := app.client.Invoke(ctx, operation, opts)
	if err != nil {
		return err
	}

	return app.write(res)
}

// Shutdown releases the client.
func (app *Application) Shutdown() error {
	return app.client.Close()
}

func (app *Application) write(res any) error {
	// Blob fields are written raw so they can be piped to a file.
	if b, ok := res.([]byte); ok {
		_, err := app.out.Write(b)
		return err
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// decodeOptions parses the options argument. Anything that is valid JSON is
// handed to the dispatcher, which rejects non-objects itself.
func decodeOptions(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	// Numbers stay json.Number so large external IDs keep their digits.
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var opts any
	if err := dec.Decode(&opts); err != nil {
		return nil, fmt.Errorf("options must be JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("options must be JSON: trailing data after value")
	}
	return opts, nil
}
