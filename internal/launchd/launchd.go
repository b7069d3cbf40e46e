// Package launchd describes the launchd agent that keeps the speedrun
// server running on macOS, and checks that the agent's server came up.
package launchd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/template"
	"time"
)

// Label identifies the agent to launchctl
const Label = "com.speedrun.server"

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
{{- range .Arguments}}
		<string>{{html .}}</string>
{{- end}}
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{html .LogDir}}/speedrun.out</string>
	<key>StandardErrorPath</key>
	<string>{{html .LogDir}}/speedrun.err</string>
	<key>WorkingDirectory</key>
	<string>{{html .WorkingDirectory}}</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>PATH</key>
		<string>/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin</string>
	</dict>
</dict>
</plist>
`))

// Agent is a speedrun server as launchd runs it. Settings resolved at
// install time are pinned on the serve command line, since launchd does not
// see the installing shell's environment or .env files.
type Agent struct {
	BinaryPath       string
	WorkingDirectory string
	LogDir           string

	Bind         string
	Port         int
	Prefix       string
	DatabasePath string
	LogLevel     string
	TLSCert      string
	TLSKey       string
}

// Arguments returns the command line the agent runs.
func (a Agent) Arguments() []string {
	args := []string{a.BinaryPath, "serve", "--log-file", a.LogFile()}

	optional := []struct{ flag, value string }{
		{"--bind", a.Bind},
		{"--prefix", a.Prefix},
		{"--db", a.DatabasePath},
		{"--log-level", a.LogLevel},
		{"--tls-cert", a.TLSCert},
		{"--tls-key", a.TLSKey},
	}
	if a.Port != 0 {
		args = append(args, "--port", strconv.Itoa(a.Port))
	}
	for _, o := range optional {
		if o.value != "" {
			args = append(args, o.flag, o.value)
		}
	}

	return args
}

// LogFile is where the agent's server writes its structured log.
func (a Agent) LogFile() string {
	return filepath.Join(a.LogDir, "speedrun.log")
}

// TLS reports whether the agent serves https.
func (a Agent) TLS() bool {
	return a.TLSCert != "" && a.TLSKey != ""
}

// HealthURL is the agent's health endpoint as reached from this machine.
func (a Agent) HealthURL() string {
	host := a.Bind
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}

	scheme := "http"
	if a.TLS() {
		scheme = "https"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(a.Port)),
		Path:   a.Prefix + "/healthz",
	}
	return u.String()
}

// Plist renders the agent's launchd property list.
func (a Agent) Plist() (string, error) {
	data := struct {
		Agent
		Label     string
		Arguments []string
	}{a, Label, a.Arguments()}

	var buf bytes.Buffer
	if err := plistTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute plist template: %w", err)
	}

	return buf.String(), nil
}

// WaitHealthy polls healthURL every interval until it answers 200 OK or ctx is
// done, in which case the last failure is returned.
func WaitHealthy(ctx context.Context, client *http.Client, healthURL string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		err := checkHealth(ctx, client, healthURL)
		if err == nil {
			return nil
		}
		// Keep the server's answer over the cancellation that cut it short
		if lastErr == nil || ctx.Err() == nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server not healthy: %w", lastErr)
		case <-ticker.C:
		}
	}
}

func checkHealth(ctx context.Context, client *http.Client, healthURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}

// GetPlistPath returns the path where the plist should be installed
func GetPlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// GetDefaultLogPath returns the default path for server logs
func GetDefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "speedrun", "logs"), nil
}
