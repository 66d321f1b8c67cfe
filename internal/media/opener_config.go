package media

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// OpenerDefinition describes how to invoke one opener, with optional
// platform-specific arguments.
type OpenerDefinition struct {
	Description string   `toml:"description"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

// OpenersConfig is the on-disk shape of an opener overrides file.
type OpenersConfig struct {
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// OpenerRegistry maps opener names to their invocation details. Openers
// without an entry are invoked with the URL as their only argument.
type OpenerRegistry struct {
	openers map[string]OpenerDefinition
}

// NewOpenerRegistry loads opener overrides from the given path. An empty
// path or a missing file yields an empty registry, not an error.
func NewOpenerRegistry(overridesPath string) (*OpenerRegistry, error) {
	registry := &OpenerRegistry{openers: make(map[string]OpenerDefinition)}

	if overridesPath == "" {
		return registry, nil
	}

	data, err := os.ReadFile(overridesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return registry, nil
		}
		return nil, err
	}

	var cfg OpenersConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	for name, def := range cfg.Openers {
		registry.openers[name] = def
	}
	return registry, nil
}

// GetCommand builds the command for a named opener.
func (r *OpenerRegistry) GetCommand(opener, url string) (*exec.Cmd, error) {
	def, exists := r.openers[opener]
	if !exists {
		return exec.Command(opener, url), nil
	}

	args := r.getArgs(&def)
	args = append(args, url)
	return exec.Command(opener, args...), nil
}

func (r *OpenerRegistry) getArgs(def *OpenerDefinition) []string {
	switch runtime.GOOS {
	case "darwin":
		if len(def.ArgsDarwin) > 0 {
			return def.ArgsDarwin
		}
	case "linux":
		if len(def.ArgsLinux) > 0 {
			return def.ArgsLinux
		}
	case "windows":
		if len(def.ArgsWindows) > 0 {
			return def.ArgsWindows
		}
	}
	return def.Args
}

// IsOpenerAvailable checks if an opener is installed.
func (r *OpenerRegistry) IsOpenerAvailable(opener string) bool {
	_, err := exec.LookPath(opener)
	return err == nil
}
