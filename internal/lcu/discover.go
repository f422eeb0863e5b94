package lcu

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// ErrNoClient is returned when no running client process exposes credentials.
var ErrNoClient = errors.New("league client process not found")

type Credentials struct {
	Port  string
	Token string
}

func (c Credentials) Valid() bool { return c.Port != "" && c.Token != "" }

var (
	portArg  = regexp.MustCompile(`--app-port=(\d+)`)
	tokenArg = regexp.MustCompile(`--remoting-auth-token=([\w-]+)`)
)

// discoverCredentials reads the command lines of running processes and
// extracts the API port and auth token from the client's arguments.
func discoverCredentials(ctx context.Context, processName string) (Credentials, error) {
	out, err := listProcesses(ctx, processName)
	if err != nil {
		return Credentials{}, fmt.Errorf("list processes: %w", err)
	}
	return parseCommandLines(out, processName)
}

func listProcesses(ctx context.Context, processName string) ([]byte, error) {
	if runtime.GOOS == "windows" {
		query := fmt.Sprintf(
			"Get-CimInstance Win32_Process -Filter \"name like '%s%%'\" | Select-Object -ExpandProperty CommandLine",
			processName,
		)
		return run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", query)
	}
	return run(ctx, "ps", "-A", "-o", "args=")
}

func parseCommandLines(out []byte, processName string) (Credentials, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, processName) {
			continue
		}
		var creds Credentials
		if m := portArg.FindStringSubmatch(line); m != nil {
			creds.Port = m[1]
		}
		if m := tokenArg.FindStringSubmatch(line); m != nil {
			creds.Token = m[1]
		}
		if creds.Valid() {
			return creds, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Credentials{}, fmt.Errorf("scan process list: %w", err)
	}
	return Credentials{}, ErrNoClient
}

func run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %w: %s", name, err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
