package mysqld

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// DiscoverDataDir queries the server binary for its configured data
// directory. The path is taken from the engine's own configuration rather
// than hardcoded, so my.cnf overrides and build-time defaults are honored.
func DiscoverDataDir(cfg *Config) (string, error) {
	// --log-error keeps startup noise out of the help output.
	cmd := exec.Command(cfg.ServerBinary,
		"--verbose", "--help",
		"--log-error=/dev/null",
	)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("probing %s for data directory: %w", cfg.ServerBinary, err)
	}

	dir, err := parseDataDir(output)
	if err != nil {
		return "", fmt.Errorf("probing %s for data directory: %w", cfg.ServerBinary, err)
	}
	return dir, nil
}

// parseDataDir extracts the datadir value from mysqld's verbose help
// output. The variables section lists one "name value" pair per line.
func parseDataDir(output []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[0] == "datadir" {
			return strings.TrimRight(fields[1], "/"), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading help output: %w", err)
	}
	return "", fmt.Errorf("help output did not report a datadir")
}
