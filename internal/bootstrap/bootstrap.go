// Package bootstrap performs one-time initialization of a MySQL data
// directory: storage layout, a temporary unnetworked instance, account and
// database provisioning from environment configuration, seed scripts,
// optional password expiry, and a clean stop before the real service
// supervisor takes over.
//
// The whole run is a strict phase sequence with fail-fast semantics. The
// only durable artifacts are the data directory itself and the incomplete
// marker inside it; the marker survives a crashed run and makes the next
// invocation fail loudly instead of silently retrying.
package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"

	"github.com/astrolox/mysql-initdb/internal/mysqld"
	"github.com/astrolox/mysql-initdb/internal/style"
)

// Runner executes administrative SQL against the bootstrap instance.
// *mysqld.Client is the production implementation.
type Runner interface {
	Exec(database string, stmts ...string) error
	Pipe(database string, r io.Reader) error
	SetCredentials(user, password string)
}

// Orchestrator drives the provisioning run. The accumulated administrative
// credential and the user-created flag live here as explicit fields rather
// than ambient process state.
type Orchestrator struct {
	cfg    *Config
	engine *mysqld.Config
	runner Runner
	stdout io.Writer
	stderr io.Writer

	// adminUser/adminPassword hold the first administrative account
	// successfully created; it authenticates everything that follows.
	adminUser     string
	adminPassword string

	// userCreated records whether any login account was provisioned.
	userCreated bool

	// expirePasswords mirrors the onetime-password flag and is also set
	// by the fallback safety path.
	expirePasswords bool
}

// New returns an orchestrator for the given configuration.
func New(cfg *Config) *Orchestrator {
	return &Orchestrator{
		cfg:             cfg,
		engine:          cfg.EngineConfig(),
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		expirePasswords: cfg.OnetimePassword,
	}
}

// Run executes the bootstrap. On successful return the data directory is
// fully provisioned and the temporary server has stopped. On failure the
// process-level contract is a non-zero exit with a one-line diagnostic;
// no rollback is attempted — the incomplete marker is the designed signal
// for operators to notice and remediate.
func (o *Orchestrator) Run() error {
	if o.engine.DataDir == "" {
		dataDir, err := mysqld.DiscoverDataDir(o.engine)
		if err != nil {
			return err
		}
		o.engine.DataDir = dataDir
	}

	// Serialize concurrent invocations against the same data directory
	// (same pattern as serializing server starts): a second run fails
	// immediately instead of interleaving with this one.
	lockPath := o.engine.DataDir + ".lock"
	runLock := flock.New(lockPath)
	locked, err := runLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring run lock %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("another bootstrap run is in progress for %s", o.engine.DataDir)
	}
	defer func() { _ = runLock.Unlock() }()

	if o.engine.Initialized() {
		fmt.Fprintf(o.stdout, "data directory %s already initialized, nothing to do\n", o.engine.DataDir)
	} else if err := o.provision(); err != nil {
		return err
	}

	// Re-entry guard, on every path including the no-op short circuit: a
	// leftover marker means a prior attempt crashed mid-provisioning.
	markerPath := MarkerPath(o.engine.DataDir)
	if markerExists(markerPath) {
		detail := ""
		if payload := readMarker(markerPath); payload != nil {
			detail = fmt.Sprintf(" (run %s, started %s)",
				payload.RunID, payload.StartedAt.Format("2006-01-02 15:04:05 UTC"))
		}
		return fmt.Errorf("initialization is incomplete%s: inspect %s, remove %s, and retry",
			detail, o.engine.DataDir, markerPath)
	}
	return nil
}

// provision runs the full first-run sequence against an empty data
// directory. Every phase failure aborts the remainder.
func (o *Orchestrator) provision() error {
	if err := os.MkdirAll(o.engine.DataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	markerPath := MarkerPath(o.engine.DataDir)
	if err := writeMarker(markerPath); err != nil {
		return fmt.Errorf("writing incomplete marker: %w", err)
	}

	fmt.Fprintf(o.stdout, "initializing data directory %s\n", o.engine.DataDir)
	if err := mysqld.Initialize(o.engine); err != nil {
		return err
	}
	fmt.Fprintln(o.stdout, style.Success("database initialized"))

	server, err := mysqld.StartServer(o.engine)
	if err != nil {
		return err
	}

	client := mysqld.NewClient(o.engine)
	if o.runner == nil {
		o.runner = client
	}
	if err := server.WaitReady(client); err != nil {
		return err
	}

	if o.cfg.SkipTzinfo {
		fmt.Fprintln(o.stdout, "skipping timezone table import")
	} else if err := mysqld.ImportTimezones(o.engine, client); err != nil {
		return err
	}

	if err := o.provisionAccounts(); err != nil {
		return err
	}

	if err := o.runSeedScripts(); err != nil {
		return err
	}

	if err := o.expireAccounts(); err != nil {
		return err
	}

	if err := server.Stop(); err != nil {
		return err
	}

	if err := clearMarker(markerPath); err != nil {
		return fmt.Errorf("clearing incomplete marker: %w", err)
	}

	fmt.Fprintln(o.stdout, style.Success("init process done, ready for start up"))
	return nil
}

// provisionAccounts purges the insecure-initialize accounts and creates the
// configured root, admin, database, and standard user, falling back to an
// empty-password root when nothing else was created.
func (o *Orchestrator) provisionAccounts() error {
	// The purge deliberately skips FLUSH PRIVILEGES: the server keeps
	// authenticating this process against its in-memory grant tables
	// until the first account batch flushes, at which point the client
	// credentials have already been switched to a created account.
	if err := o.runner.Exec("", purgeStatements()...); err != nil {
		return fmt.Errorf("purging default accounts: %w", err)
	}

	if o.cfg.RootPassword != "" || o.cfg.AllowEmptyPassword || o.cfg.RandomRootPassword {
		password := o.cfg.RootPassword
		if o.cfg.RandomRootPassword {
			generated, err := GeneratePassword()
			if err != nil {
				return err
			}
			password = generated
			fmt.Fprintf(o.stdout, "GENERATED ROOT PASSWORD: %s\n", password)
		}
		if err := o.createAdmin("root", password); err != nil {
			return fmt.Errorf("provisioning root: %w", err)
		}
	}

	if o.cfg.AdminUser != "" {
		password := o.cfg.AdminPassword
		if o.cfg.RandomAdminPassword {
			generated, err := GeneratePassword()
			if err != nil {
				return err
			}
			password = generated
			fmt.Fprintf(o.stdout, "GENERATED ADMIN PASSWORD: %s\n", password)
		}
		if err := o.createAdmin(o.cfg.AdminUser, password); err != nil {
			return fmt.Errorf("provisioning admin user %s: %w", o.cfg.AdminUser, err)
		}
	}

	if o.cfg.Database != "" {
		if err := o.runner.Exec("", databaseStatement(o.cfg.Database)); err != nil {
			return fmt.Errorf("provisioning database %s: %w", o.cfg.Database, err)
		}
	}

	if o.cfg.User != "" && o.cfg.Password != "" {
		if err := o.runner.Exec("", userStatements(o.cfg.User, o.cfg.Password, o.cfg.Database)...); err != nil {
			return fmt.Errorf("provisioning user %s: %w", o.cfg.User, err)
		}
		o.userCreated = true
	}

	if !o.userCreated {
		fmt.Fprintln(o.stderr, style.Warn("Warning: no account configured; creating root with an empty password that must be changed on first login"))
		if err := o.createAdmin("root", ""); err != nil {
			return fmt.Errorf("provisioning fallback root: %w", err)
		}
		o.expirePasswords = true
	}
	return nil
}

// createAdmin creates a full-privilege account and records it as the run's
// own credential if it is the first one.
func (o *Orchestrator) createAdmin(name, password string) error {
	if err := o.runner.Exec("", adminStatements(name, password)...); err != nil {
		return err
	}
	o.userCreated = true
	if o.adminUser == "" {
		o.adminUser = name
		o.adminPassword = password
		o.runner.SetCredentials(name, password)
	}
	return nil
}

// expireAccounts forces password expiry on the administrative accounts when
// the onetime-password path is engaged. The run's own account goes last so
// the expiry statements themselves still authenticate.
func (o *Orchestrator) expireAccounts() error {
	if !o.expirePasswords {
		return nil
	}
	if o.cfg.AdminUser != "" {
		if err := o.runner.Exec("", expireStatement(o.cfg.AdminUser)); err != nil {
			return fmt.Errorf("expiring password for %s: %w", o.cfg.AdminUser, err)
		}
	}
	if o.adminUser != "" && o.adminUser != o.cfg.AdminUser {
		if err := o.runner.Exec("", expireStatement(o.adminUser)); err != nil {
			return fmt.Errorf("expiring password for %s: %w", o.adminUser, err)
		}
	}
	return nil
}
