package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineconnect/cinefeed/internal/config"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Kind
	}{
		{"jpg poster", "https://m.media-amazon.com/images/poster.jpg", KindImage},
		{"jpeg", "https://img.example/x.jpeg", KindImage},
		{"png", "https://img.example/x.png", KindImage},
		{"webp", "https://img.example/x.webp", KindImage},
		{"uppercase extension", "https://img.example/POSTER.JPG", KindImage},
		{"extension with query", "https://img.example/x.jpg?w=300", KindImage},
		{"extension with anchor", "https://img.example/x.png#top", KindImage},
		{"catalog page", "https://www.imdb.com/title/tt0111161/", KindPage},
		{"no extension", "https://example.com/movies", KindPage},
		{"html page", "https://example.com/index.html", KindPage},
		{"dot in hostname only", "https://example.com", KindPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.url))
		})
	}
}

func TestNewOpenerRegistryEmptyPath(t *testing.T) {
	registry, err := NewOpenerRegistry("")
	require.NoError(t, err)
	require.NotNil(t, registry)
	assert.Empty(t, registry.openers)
}

func TestNewOpenerRegistryMissingFile(t *testing.T) {
	registry, err := NewOpenerRegistry(filepath.Join(t.TempDir(), "no-such.toml"))
	require.NoError(t, err)
	assert.Empty(t, registry.openers)
}

func TestNewOpenerRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openers.toml")
	content := `
[openers.feh]
description = "lightweight image viewer"
args = ["--scale-down"]

[openers.firefox]
args = ["--new-tab"]
args_darwin = ["-a", "Firefox"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry, err := NewOpenerRegistry(path)
	require.NoError(t, err)
	require.Len(t, registry.openers, 2)

	def, ok := registry.openers["feh"]
	require.True(t, ok)
	assert.Equal(t, []string{"--scale-down"}, def.Args)
}

func TestNewOpenerRegistryInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[openers\nnot toml"), 0o644))

	_, err := NewOpenerRegistry(path)
	require.Error(t, err)
}

func TestGetCommand(t *testing.T) {
	registry := &OpenerRegistry{openers: map[string]OpenerDefinition{
		"feh": {Args: []string{"--scale-down"}},
	}}

	t.Run("registered opener gets its args", func(t *testing.T) {
		cmd, err := registry.GetCommand("feh", "https://img.example/x.jpg")
		require.NoError(t, err)
		assert.Equal(t, []string{"feh", "--scale-down", "https://img.example/x.jpg"}, cmd.Args)
	})

	t.Run("unregistered opener gets URL only", func(t *testing.T) {
		cmd, err := registry.GetCommand("xdg-open", "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"xdg-open", "https://example.com"}, cmd.Args)
	})
}

func TestNewLauncher(t *testing.T) {
	cfg := config.TestConfig()
	launcher := NewLauncher(cfg)

	require.NotNil(t, launcher)
	assert.NotEmpty(t, launcher.defaultOpener)
	assert.NotNil(t, launcher.registry)
}

func TestNewLauncherFallsBackToDefaultOpener(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Media.Darwin = []string{"definitely-not-installed-viewer"}
	cfg.Media.Linux = []string{"definitely-not-installed-viewer"}
	cfg.Media.Windows = []string{"definitely-not-installed-viewer"}
	cfg.Media.DefaultOpener = "my-opener"

	launcher := NewLauncher(cfg)
	assert.Equal(t, "my-opener", launcher.imageViewer)
}

func TestPlatformOpener(t *testing.T) {
	assert.NotEmpty(t, platformOpener())
}
