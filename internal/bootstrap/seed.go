package bootstrap

import (
	"compress/gzip"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// seedKind is the closed set of seed file variants.
type seedKind int

const (
	seedUnknown seedKind = iota
	seedShell
	seedSQL
	seedCompressedSQL
)

// classifySeed maps a file name to its seed variant. The .sql.gz check
// runs before .sql since the suffixes overlap.
func classifySeed(name string) seedKind {
	switch {
	case strings.HasSuffix(name, ".sh"):
		return seedShell
	case strings.HasSuffix(name, ".sql.gz"):
		return seedCompressedSQL
	case strings.HasSuffix(name, ".sql"):
		return seedSQL
	default:
		return seedUnknown
	}
}

// runSeedScripts executes every entry in the seed directory in lexical
// order. Shell scripts run via sh with the client connection details in the
// environment; SQL files are piped into the client, decompressed first when
// gzipped; anything else is skipped with a notice. The first failure aborts
// the run.
func (o *Orchestrator) runSeedScripts() error {
	entries, err := os.ReadDir(o.cfg.SeedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading seed directory %s: %w", o.cfg.SeedDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(o.cfg.SeedDir, entry.Name())
		switch classifySeed(entry.Name()) {
		case seedShell:
			fmt.Fprintf(o.stdout, "running %s\n", path)
			if err := o.runSeedShell(path); err != nil {
				return fmt.Errorf("seed script %s: %w", path, err)
			}
		case seedSQL:
			fmt.Fprintf(o.stdout, "running %s\n", path)
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("seed script %s: %w", path, err)
			}
			err = o.runner.Pipe(o.cfg.Database, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("seed script %s: %w", path, err)
			}
		case seedCompressedSQL:
			fmt.Fprintf(o.stdout, "running %s\n", path)
			if err := o.runSeedCompressed(path); err != nil {
				return fmt.Errorf("seed script %s: %w", path, err)
			}
		default:
			fmt.Fprintf(o.stdout, "ignoring %s\n", path)
		}
	}
	return nil
}

// runSeedShell runs a shell seed script. The script gets the socket path
// and administrative credentials in its environment so it can invoke the
// client itself.
func (o *Orchestrator) runSeedShell(path string) error {
	cmd := exec.Command("sh", path)
	cmd.Stdout = o.stdout
	cmd.Stderr = o.stderr
	cmd.Env = append(os.Environ(),
		"MYSQL_INITDB_SOCKET="+o.engine.Socket,
		"MYSQL_INITDB_USER="+o.adminUser,
		"MYSQL_PWD="+o.adminPassword,
	)
	return cmd.Run()
}

// runSeedCompressed decompresses a gzipped SQL file and pipes it into the
// client.
func (o *Orchestrator) runSeedCompressed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompressing: %w", err)
	}
	defer gz.Close()

	return o.runner.Pipe(o.cfg.Database, gz)
}
