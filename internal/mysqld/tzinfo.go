package mysqld

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// The zoneinfo database carries one upstream comment string that the
// mysql.time_zone tables reject (https://bugs.mysql.com/bug.php?id=20545).
// The conversion output is patched to a harmless abbreviation before import.
const (
	zicMarker      = "Local time zone must be set--see zic manual page"
	zicReplacement = "FCTY"
)

// ImportTimezones converts the system timezone database with the engine's
// conversion utility and loads the result into the mysql system database.
func ImportTimezones(cfg *Config, client *Client) error {
	tz := exec.Command(cfg.TzinfoBinary, cfg.ZoneinfoDir)
	out, err := tz.StdoutPipe()
	if err != nil {
		return fmt.Errorf("piping %s: %w", cfg.TzinfoBinary, err)
	}
	if err := tz.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", cfg.TzinfoBinary, err)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(rewriteZicMarker(pw, out))
	}()

	if err := client.Pipe("mysql", pr); err != nil {
		_ = tz.Process.Kill()
		_ = tz.Wait()
		return fmt.Errorf("loading timezone tables: %w", err)
	}
	if err := tz.Wait(); err != nil {
		return fmt.Errorf("%s: %w", cfg.TzinfoBinary, err)
	}
	return nil
}

// rewriteZicMarker copies src to dst line by line, replacing the known-bad
// zoneinfo marker string wherever it appears.
func rewriteZicMarker(dst io.Writer, src io.Reader) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	w := bufio.NewWriter(dst)
	for scanner.Scan() {
		line := strings.ReplaceAll(scanner.Text(), zicMarker, zicReplacement)
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return w.Flush()
}
