package mysqld

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Client executes SQL against the bootstrap instance by shelling out to the
// mysql client over the local socket. The credentials start as the
// insecure-initialize default (root, no password) and are switched to the
// first provisioned account once one exists.
type Client struct {
	cfg      *Config
	user     string
	password string
}

// NewClient returns a client authenticating with the insecure-initialize
// default account.
func NewClient(cfg *Config) *Client {
	return &Client{cfg: cfg, user: "root"}
}

// SetCredentials switches the account used for subsequent invocations.
func (c *Client) SetCredentials(user, password string) {
	c.user = user
	c.password = password
}

// User returns the account name currently used for SQL execution.
func (c *Client) User() string {
	return c.user
}

// Password returns the password currently used for SQL execution.
func (c *Client) Password() string {
	return c.password
}

// command builds a mysql client invocation against the given database.
// The password travels via MYSQL_PWD in the child environment rather than
// argv, so it never shows up in process listings.
func (c *Client) command(database string) *exec.Cmd {
	args := []string{
		"--protocol=socket",
		"--socket=" + c.cfg.Socket,
		"-u" + c.user,
	}
	if database != "" {
		args = append(args, database)
	}

	cmd := exec.Command(c.cfg.ClientBinary, args...)
	cmd.Env = os.Environ()
	if c.password != "" {
		cmd.Env = append(cmd.Env, "MYSQL_PWD="+c.password)
	}
	return cmd
}

// Exec pipes the given statements into the client against the given
// database (empty for none). Any non-zero client exit is an error carrying
// the client's stderr.
func (c *Client) Exec(database string, stmts ...string) error {
	return c.Pipe(database, strings.NewReader(strings.Join(stmts, "\n")+"\n"))
}

// Pipe streams arbitrary SQL text into the client. Used for seed files and
// the timezone import, where the statement stream is produced elsewhere.
func (c *Client) Pipe(database string, r io.Reader) error {
	cmd := c.command(database)
	cmd.Stdin = r

	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("mysql client: %w (%s)", err, msg)
		}
		return fmt.Errorf("mysql client: %w", err)
	}
	return nil
}

// Ping submits a trivial query to check the server is answering.
func (c *Client) Ping() error {
	cmd := c.command("")
	cmd.Stdin = strings.NewReader("SELECT 1 ;\n")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("probing server: %w", err)
	}
	return nil
}
