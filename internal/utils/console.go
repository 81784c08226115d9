package utils

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/mudler/yip/pkg/console"
)

// Console runs external commands through a shell and returns their combined output.
type Console interface {
	Run(cmd string, opts ...func(cmd *exec.Cmd)) (string, error)
}

// JetsonConsole wraps the yip standard console to log every invocation.
type JetsonConsole struct {
	inner Console
}

func NewConsole() *JetsonConsole {
	return &JetsonConsole{inner: console.NewStandardConsole()}
}

func (s JetsonConsole) Run(cmd string, opts ...func(cmd *exec.Cmd)) (string, error) {
	Log.Debug().Str("cmd", cmd).Msg("Running")
	out, err := s.inner.Run(cmd, opts...)
	if err != nil {
		Log.Debug().Str("cmd", cmd).Str("output", out).Err(err).Msg("Command failed")
		return out, fmt.Errorf("failed to run %s: %w", cmd, err)
	}
	return out, nil
}

// Quote single-quotes a shell argument.
func Quote(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// Lines splits command output into trimmed, non empty lines.
func Lines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
