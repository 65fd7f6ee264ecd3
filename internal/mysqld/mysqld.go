// Package mysqld drives the MySQL server binary and client through their
// command-line interfaces during first-run bootstrap.
//
// The engine is treated as a black box. The package depends only on a few
// CLI contracts:
//   - mysqld --initialize-insecure lays down the system tables
//   - mysqld --verbose --help reports the configured data directory
//   - mysqld --skip-networking --socket=... serves local clients only
//   - mysql --protocol=socket submits SQL read from stdin
//   - mysql_tzinfo_to_sql converts the system zoneinfo database
//
// The temporary server started here is never exposed on the network; it
// exists only for the provisioning window and is stopped before the real
// service supervisor takes over.
package mysqld

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// Default configuration
const (
	DefaultServerBinary = "mysqld"
	DefaultClientBinary = "mysql"
	DefaultTzinfoBinary = "mysql_tzinfo_to_sql"
	DefaultSocket       = "/var/run/mysqld/mysqld.sock"
	DefaultZoneinfoDir  = "/usr/share/zoneinfo"

	// DefaultReadyAttempts and DefaultReadyInterval bound the readiness
	// poll: the server must answer a trivial query within this budget or
	// the bootstrap fails.
	DefaultReadyAttempts = 30
	DefaultReadyInterval = time.Second
)

// Config holds the engine CLI configuration.
type Config struct {
	// ServerBinary is the mysqld executable name or path.
	ServerBinary string

	// ClientBinary is the mysql client executable name or path.
	ClientBinary string

	// TzinfoBinary is the timezone conversion utility name or path.
	TzinfoBinary string

	// Socket is the Unix socket the temporary server listens on.
	Socket string

	// DataDir is the server data directory. Empty means discover it from
	// the server binary's own configuration via DiscoverDataDir.
	DataDir string

	// ZoneinfoDir is the system timezone database directory.
	ZoneinfoDir string

	// LogFile receives the temporary server's output. Empty means the
	// server inherits this process's stderr.
	LogFile string

	// ReadyAttempts is the number of readiness probes before giving up.
	ReadyAttempts int

	// ReadyInterval is the pause between readiness probes.
	ReadyInterval time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerBinary:  DefaultServerBinary,
		ClientBinary:  DefaultClientBinary,
		TzinfoBinary:  DefaultTzinfoBinary,
		Socket:        DefaultSocket,
		ZoneinfoDir:   DefaultZoneinfoDir,
		ReadyAttempts: DefaultReadyAttempts,
		ReadyInterval: DefaultReadyInterval,
	}
}

// SystemDatabaseDir returns the path whose existence marks the data
// directory as already initialized.
func (c *Config) SystemDatabaseDir() string {
	return filepath.Join(c.DataDir, "mysql")
}

// Initialized reports whether the data directory already contains the
// engine's system database.
func (c *Config) Initialized() bool {
	_, err := os.Stat(c.SystemDatabaseDir())
	return err == nil
}

// Initialize lays down the system tables in the data directory using the
// engine's insecure-initialize mode. The resulting instance has a single
// passwordless local root account, which the bootstrap purges before any
// networked server ever runs against this data directory.
func Initialize(cfg *Config) error {
	cmd := exec.Command(cfg.ServerBinary,
		"--initialize-insecure",
		"--datadir="+cfg.DataDir,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("initializing data directory: %w\n%s", err, output)
	}
	return nil
}

// Server is a temporary unnetworked mysqld instance.
type Server struct {
	cfg *Config
	cmd *exec.Cmd
}

// StartServer launches mysqld bound to a local socket with TCP networking
// disabled, as a background process. Callers must WaitReady before issuing
// SQL and Stop before handing the data directory to the real supervisor.
func StartServer(cfg *Config) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Socket), 0755); err != nil {
		return nil, fmt.Errorf("creating socket directory: %w", err)
	}

	cmd := exec.Command(cfg.ServerBinary,
		"--datadir="+cfg.DataDir,
		"--skip-networking",
		"--socket="+cfg.Socket,
	)
	cmd.Stdin = nil

	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening server log file: %w", err)
		}
		cmd.Stdout = logFile
		cmd.Stderr = logFile
		defer func() {
			// Child holds its own handle once started.
			if closeErr := logFile.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close server log file: %v\n", closeErr)
			}
		}()
	} else {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting temporary server: %w", err)
	}

	return &Server{cfg: cfg, cmd: cmd}, nil
}

// PID returns the temporary server's process ID.
func (s *Server) PID() int {
	return s.cmd.Process.Pid
}

// WaitReady polls a trivial query against the server until it answers or
// the configured retry budget is exhausted.
func (s *Server) WaitReady(client *Client) error {
	attempts := s.cfg.ReadyAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(s.cfg.ReadyInterval)
		}
		if lastErr = client.Ping(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("server (PID %d) not answering queries after %d attempts: %w",
		s.PID(), attempts, lastErr)
}

// Stop sends SIGTERM to the server and waits for it to exit. A non-zero
// exit status or a failed wait is an error; the caller treats it as fatal
// because a half-stopped server would corrupt the handover to the real
// supervisor.
func (s *Server) Stop() error {
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending SIGTERM to server (PID %d): %w", s.PID(), err)
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("waiting for server (PID %d) to stop: %w", s.PID(), err)
	}
	return nil
}
