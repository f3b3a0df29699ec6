package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os/exec"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git-cai/internal/config"
)

func TestIsLoopback(t *testing.T) {
	cases := map[string]bool{
		"http://localhost:11434":  true,
		"http://127.0.0.1:11434":  true,
		"http://[::1]:11434":      true,
		"http://10.0.0.5:11434":   false,
		"http://ollama.lan:11434": false,
	}
	for raw, want := range cases {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, isLoopback(u), raw)
	}
}

func TestNewOllamaProviderDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")

	p := newOllamaProvider(config.Provider{Model: "qwen2.5-coder"}, zerolog.Nop())
	assert.Equal(t, "http://localhost:11434", p.host.String())
	assert.Equal(t, "ollama", p.Name())
	assert.NoError(t, p.Close())
}

func TestNewOllamaProviderHostOverride(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://192.168.1.20:11434")

	p := newOllamaProvider(config.Provider{Model: "qwen2.5-coder"}, zerolog.Nop())
	assert.Equal(t, "192.168.1.20:11434", p.host.Host)
}

func TestNewOllamaProviderBadHostFallsBack(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "::not a url::")

	p := newOllamaProvider(config.Provider{}, zerolog.Nop())
	assert.Equal(t, "http://localhost:11434", p.host.String())
}

// unhealthyProvider builds a provider whose health check fails immediately
// and whose configured host is the given URL.
func unhealthyProvider(t *testing.T, host string) *ollamaProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	srvURL, err := url.Parse(srv.URL)
	require.NoError(t, err)
	hostURL, err := url.Parse(host)
	require.NoError(t, err)

	return &ollamaProvider{
		client: api.NewClient(srvURL, srv.Client()),
		host:   hostURL,
		logger: zerolog.Nop(),
	}
}

func TestEnsureRunningRefusesNonLoopbackHost(t *testing.T) {
	p := unhealthyProvider(t, "http://192.0.2.1:11434")

	err := p.ensureRunning(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "make sure ollama is running")
	assert.Nil(t, p.serve)
}

func TestCloseWithoutSpawnedServerIsNoop(t *testing.T) {
	p := &ollamaProvider{logger: zerolog.Nop()}
	assert.NoError(t, p.Close())
}

func TestCloseReapsSpawnedServer(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())

	p := &ollamaProvider{serve: cmd, logger: zerolog.Nop()}
	require.NoError(t, p.Close())

	assert.Nil(t, p.serve)
	require.NotNil(t, cmd.ProcessState)
	assert.False(t, cmd.ProcessState.Success())
}
