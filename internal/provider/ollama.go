package provider

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"git-cai/internal/config"
)

const (
	defaultOllamaHost = "http://localhost:11434"

	healthTimeout = 5 * time.Second
	startTimeout  = 10 * time.Second
	startPoll     = 250 * time.Millisecond
	reapGrace     = 3 * time.Second
)

// ollamaProvider talks to a local model server. When the server is not
// running and the host is loopback it is started on demand; a server this
// instance started is terminated on Close, a pre-existing one is left alone.
type ollamaProvider struct {
	client *api.Client
	host   *url.URL
	cfg    config.Provider
	logger zerolog.Logger

	serve *exec.Cmd // non-nil only when we spawned the server
}

func newOllamaProvider(cfg config.Provider, logger zerolog.Logger) *ollamaProvider {
	raw := os.Getenv("OLLAMA_HOST")
	if raw == "" {
		raw = defaultOllamaHost
	}
	host, err := url.Parse(raw)
	if err != nil || host.Host == "" {
		host, _ = url.Parse(defaultOllamaHost)
	}

	return &ollamaProvider{
		client: api.NewClient(host, &http.Client{Timeout: requestTimeout}),
		host:   host,
		cfg:    cfg,
		logger: logger,
	}
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	if err := p.ensureRunning(ctx); err != nil {
		return "", err
	}

	stream := false
	req := &api.GenerateRequest{
		Model:  p.cfg.Model,
		Prompt: content,
		System: systemPrompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": p.cfg.Temperature,
		},
	}

	var reply strings.Builder
	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		reply.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return "", fmt.Errorf("cannot connect to ollama at %s - make sure ollama is running", p.host)
		}
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return strings.TrimSpace(reply.String()), nil
}

// ensureRunning checks the server and, for a loopback host, launches
// `ollama serve` and polls until it answers or the start timeout elapses.
func (p *ollamaProvider) ensureRunning(ctx context.Context) error {
	if p.healthy(ctx) {
		return nil
	}

	if !isLoopback(p.host) {
		return fmt.Errorf("cannot connect to ollama at %s - make sure ollama is running with 'ollama serve'", p.host)
	}

	p.logger.Info().Str("host", p.host.String()).Msg("ollama not running, starting it")

	cmd := exec.Command("ollama", "serve")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ollama: %w", err)
	}

	deadline := time.Now().Add(startTimeout)
	for time.Now().Before(deadline) {
		if p.healthy(ctx) {
			p.serve = cmd
			p.logger.Debug().Int("pid", cmd.Process.Pid).Msg("ollama started")
			return nil
		}
		time.Sleep(startPoll)
	}

	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	return fmt.Errorf("could not start ollama within %s", startTimeout)
}

func (p *ollamaProvider) healthy(ctx context.Context) bool {
	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	_, err := p.client.List(hctx)
	return err == nil
}

// Close terminates the server if and only if this instance started it:
// SIGTERM first, SIGKILL after a grace period.
func (p *ollamaProvider) Close() error {
	if p.serve == nil || p.serve.Process == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- p.serve.Wait() }()

	if err := p.serve.Process.Signal(syscall.SIGTERM); err != nil {
		return nil // already gone
	}
	select {
	case <-done:
	case <-time.After(reapGrace):
		p.logger.Debug().Msg("ollama did not stop on SIGTERM, killing")
		_ = p.serve.Process.Kill()
		<-done
	}

	p.serve = nil
	return nil
}

func isLoopback(u *url.URL) bool {
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
