// Package media opens poster images and catalog pages in an external
// application. Posters go to an image-capable opener when one is installed;
// everything else goes to the platform's default URL opener.
package media

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/cineconnect/cinefeed/internal/config"
)

type Kind int

const (
	KindImage Kind = iota
	KindPage
)

var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

type Launcher struct {
	imageViewer   string
	defaultOpener string
	registry      *OpenerRegistry
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewOpenerRegistry(cfg.Media.OverridesPath)
	if err != nil {
		// Continue without overrides if the file is unreadable
		registry = &OpenerRegistry{openers: make(map[string]OpenerDefinition)}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = platformOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = cfg.Media.Darwin
	case "linux":
		candidates = cfg.Media.Linux
	case "windows":
		candidates = cfg.Media.Windows
	default:
		candidates = cfg.Media.Darwin
	}

	if len(candidates) > 0 {
		l.imageViewer = findCommand(candidates...)
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}

	return l
}

// Open launches the appropriate application for the URL and returns without
// waiting for it to exit.
func (l *Launcher) Open(url string) error {
	var opener string
	switch DetectKind(url) {
	case KindImage:
		opener = l.imageViewer
	default:
		opener = l.defaultOpener
	}
	if opener == "" {
		opener = platformOpener()
	}
	if opener == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.GetCommand(opener, url)
	if err != nil {
		cmd = exec.Command(opener, url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", opener, err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// DetectKind classifies a URL by its file extension. Poster URLs from the
// catalog end in an image extension; catalog pages and everything else do not.
func DetectKind(url string) Kind {
	lower := strings.ToLower(url)

	var ext string
	if idx := strings.LastIndex(lower, "."); idx != -1 {
		ext = lower[idx+1:]
		if qIdx := strings.Index(ext, "?"); qIdx != -1 {
			ext = ext[:qIdx]
		}
		if aIdx := strings.Index(ext, "#"); aIdx != -1 {
			ext = ext[:aIdx]
		}
	}

	for _, e := range imageExtensions {
		if ext == e {
			return KindImage
		}
	}
	return KindPage
}

func platformOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
