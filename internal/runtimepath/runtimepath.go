// Package runtimepath locates the per-user runtime files of the daemon.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	EnvSocket  = "NOSYTOS_SOCKET"
	socketName = "nosytos.sock"
	pidName    = "nosytos.pid"
)

// Dir returns the runtime directory: $XDG_RUNTIME_DIR, else /run/user/<uid>
// when it exists, else a private directory under the system temp dir.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := strconv.Itoa(os.Getuid())
	if info, err := os.Stat(filepath.Join("/run/user", uid)); err == nil && info.IsDir() {
		return filepath.Join("/run/user", uid), nil
	}

	fallback := filepath.Join(os.TempDir(), "nosytos-runtime-"+uid)
	if err := os.MkdirAll(fallback, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir %s: %w", fallback, err)
	}
	return fallback, nil
}

func inDir(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SocketPath returns the daemon IPC socket path, honouring NOSYTOS_SOCKET.
func SocketPath() (string, error) {
	if p := os.Getenv(EnvSocket); p != "" {
		return p, nil
	}
	return inDir(socketName)
}

// PIDPath returns the file the daemon records its pid in.
func PIDPath() (string, error) {
	return inDir(pidName)
}
