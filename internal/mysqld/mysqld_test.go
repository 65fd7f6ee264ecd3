package mysqld

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeStub writes an executable shell script standing in for an engine
// binary.
func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("writing stub %s: %v", name, err)
	}
	return path
}

func TestDiscoverDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ServerBinary = writeStub(t, dir, "mysqld", `echo "datadir /var/lib/mysql/"`)

	got, err := DiscoverDataDir(cfg)
	if err != nil {
		t.Fatalf("DiscoverDataDir() error: %v", err)
	}
	if got != "/var/lib/mysql" {
		t.Errorf("DiscoverDataDir() = %q, want %q", got, "/var/lib/mysql")
	}
}

func TestDiscoverDataDirFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ServerBinary = writeStub(t, dir, "mysqld", `exit 1`)

	if _, err := DiscoverDataDir(cfg); err == nil {
		t.Error("DiscoverDataDir() expected error for failing binary")
	}
}

func TestInitializedProbe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	if cfg.Initialized() {
		t.Error("Initialized() = true for empty data directory")
	}
	if err := os.Mkdir(cfg.SystemDatabaseDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if !cfg.Initialized() {
		t.Error("Initialized() = false after creating system database directory")
	}
}

func TestClientExecPipesStatements(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sql.log")
	t.Setenv("STUB_SQL_LOG", logPath)

	cfg := DefaultConfig()
	cfg.ClientBinary = writeStub(t, dir, "mysql", `cat >> "$STUB_SQL_LOG"`)
	cfg.Socket = filepath.Join(dir, "mysqld.sock")

	client := NewClient(cfg)
	if err := client.Exec("", "SELECT 1 ;", "SELECT 2 ;"); err != nil {
		t.Fatalf("Exec() error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "SELECT 1 ;\nSELECT 2 ;\n"; got != want {
		t.Errorf("client received %q, want %q", got, want)
	}
}

func TestClientExecSurfacesStderr(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ClientBinary = writeStub(t, dir, "mysql", `echo "ERROR 1045 (28000): Access denied" >&2; exit 1`)

	err := NewClient(cfg).Exec("", "SELECT 1 ;")
	if err == nil {
		t.Fatal("Exec() expected error for failing client")
	}
	if !strings.Contains(err.Error(), "Access denied") {
		t.Errorf("Exec() error %q does not carry client stderr", err)
	}
}

func TestClientPasswordViaEnvironment(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "env.out")
	t.Setenv("STUB_ENV_OUT", outPath)

	cfg := DefaultConfig()
	cfg.ClientBinary = writeStub(t, dir, "mysql", `printf '%s' "$MYSQL_PWD" > "$STUB_ENV_OUT"; cat > /dev/null`)

	client := NewClient(cfg)
	client.SetCredentials("root", "s3cret")
	if err := client.Exec("", "SELECT 1 ;"); err != nil {
		t.Fatalf("Exec() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "s3cret" {
		t.Errorf("MYSQL_PWD in client environment = %q, want %q", data, "s3cret")
	}
}

func TestServerStartStop(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Socket = filepath.Join(dir, "run", "mysqld.sock")
	cfg.ServerBinary = writeStub(t, dir, "mysqld", `trap 'exit 0' TERM
while :; do sleep 1; done`)
	cfg.ClientBinary = writeStub(t, dir, "mysql", `cat > /dev/null`)
	cfg.ReadyAttempts = 3
	cfg.ReadyInterval = 10 * time.Millisecond

	server, err := StartServer(cfg)
	if err != nil {
		t.Fatalf("StartServer() error: %v", err)
	}
	if err := server.WaitReady(NewClient(cfg)); err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Socket = filepath.Join(dir, "run", "mysqld.sock")
	cfg.ServerBinary = writeStub(t, dir, "mysqld", `trap 'exit 0' TERM
while :; do sleep 1; done`)
	cfg.ClientBinary = writeStub(t, dir, "mysql", `exit 1`)
	cfg.ReadyAttempts = 2
	cfg.ReadyInterval = 10 * time.Millisecond

	server, err := StartServer(cfg)
	if err != nil {
		t.Fatalf("StartServer() error: %v", err)
	}
	defer server.Stop()

	if err := server.WaitReady(NewClient(cfg)); err == nil {
		t.Error("WaitReady() expected error when server never answers")
	}
}
