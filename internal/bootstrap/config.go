package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/astrolox/mysql-initdb/internal/mysqld"
)

// DefaultSeedDir is the conventional directory scanned for operator-supplied
// seed scripts.
const DefaultSeedDir = "/docker-entrypoint-initdb.d"

// Config holds the provisioning configuration. Every field is optional;
// for string-valued settings the empty value means "unset". Values come
// from an optional TOML file, overridden by environment variables:
//   - MYSQL_ROOT_PASSWORD → RootPassword
//   - MYSQL_RANDOM_ROOT_PASSWORD → RandomRootPassword
//   - MYSQL_ALLOW_EMPTY_PASSWORD → AllowEmptyPassword
//   - MYSQL_ADMIN_USER → AdminUser
//   - MYSQL_ADMIN_PASSWORD → AdminPassword
//   - MYSQL_RANDOM_ADMIN_PASSWORD → RandomAdminPassword
//   - MYSQL_USER → User
//   - MYSQL_PASSWORD → Password
//   - MYSQL_DATABASE → Database
//   - MYSQL_INITDB_SKIP_TZINFO → SkipTzinfo
//   - MYSQL_ONETIME_PASSWORD → OnetimePassword
//
// Flag-like variables follow presence-of-value semantics: any non-empty
// value enables them.
type Config struct {
	// RootPassword is the password for the root account reachable from
	// any host.
	RootPassword string `toml:"root_password"`

	// RandomRootPassword creates root with a freshly generated password,
	// displayed exactly once.
	RandomRootPassword bool `toml:"random_root_password"`

	// AllowEmptyPassword creates root with an empty password.
	AllowEmptyPassword bool `toml:"allow_empty_password"`

	// AdminUser names a secondary administrative account to create.
	AdminUser string `toml:"admin_user"`

	// AdminPassword is the secondary admin account's password.
	AdminPassword string `toml:"admin_password"`

	// RandomAdminPassword generates the secondary admin's password,
	// displayed exactly once.
	RandomAdminPassword bool `toml:"random_admin_password"`

	// User and Password describe a standard (non-administrative) account.
	// Both must be set for the account to be created.
	User     string `toml:"user"`
	Password string `toml:"password"`

	// Database names an application database to create if absent. A
	// standard user, when configured, is granted privileges on it only.
	Database string `toml:"database"`

	// SkipTzinfo skips the timezone table import.
	SkipTzinfo bool `toml:"skip_tzinfo"`

	// OnetimePassword forces immediate password expiry on the
	// administrative accounts after provisioning.
	OnetimePassword bool `toml:"onetime_password"`

	// SeedDir is the seed scripts directory.
	SeedDir string `toml:"seed_dir"`

	// Server configures the engine CLI.
	Server ServerConfig `toml:"server"`
}

// ServerConfig is the TOML-facing slice of the engine configuration.
type ServerConfig struct {
	Binary        string `toml:"binary"`
	ClientBinary  string `toml:"client_binary"`
	TzinfoBinary  string `toml:"tzinfo_binary"`
	Socket        string `toml:"socket"`
	DataDir       string `toml:"data_dir"`
	ZoneinfoDir   string `toml:"zoneinfo_dir"`
	LogFile       string `toml:"log_file"`
	ReadyAttempts int    `toml:"ready_attempts"`
	ReadySeconds  int    `toml:"ready_seconds"`
}

// LoadConfig builds the effective configuration: defaults, then the TOML
// file at path (when non-empty), then environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := &Config{SeedDir: DefaultSeedDir}

	if path != "" {
		meta, err := toml.DecodeFile(path, config)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s: unrecognized keys: %v", path, undecoded)
		}
	}

	config.applyEnv()
	return config, nil
}

// applyEnv overrides file-supplied values with environment variables.
// Absence and emptiness are both "unset" and leave the field alone.
func (c *Config) applyEnv() {
	if v := os.Getenv("MYSQL_ROOT_PASSWORD"); v != "" {
		c.RootPassword = v
	}
	if envSet("MYSQL_RANDOM_ROOT_PASSWORD") {
		c.RandomRootPassword = true
	}
	if envSet("MYSQL_ALLOW_EMPTY_PASSWORD") {
		c.AllowEmptyPassword = true
	}
	if v := os.Getenv("MYSQL_ADMIN_USER"); v != "" {
		c.AdminUser = v
	}
	if v := os.Getenv("MYSQL_ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if envSet("MYSQL_RANDOM_ADMIN_PASSWORD") {
		c.RandomAdminPassword = true
	}
	if v := os.Getenv("MYSQL_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		c.Database = v
	}
	if envSet("MYSQL_INITDB_SKIP_TZINFO") {
		c.SkipTzinfo = true
	}
	if envSet("MYSQL_ONETIME_PASSWORD") {
		c.OnetimePassword = true
	}
}

// envSet reports whether the variable holds any non-empty value.
func envSet(name string) bool {
	return os.Getenv(name) != ""
}

// EngineConfig materializes the engine CLI configuration, filling defaults
// for everything the file left unset.
func (c *Config) EngineConfig() *mysqld.Config {
	engine := mysqld.DefaultConfig()
	if c.Server.Binary != "" {
		engine.ServerBinary = c.Server.Binary
	}
	if c.Server.ClientBinary != "" {
		engine.ClientBinary = c.Server.ClientBinary
	}
	if c.Server.TzinfoBinary != "" {
		engine.TzinfoBinary = c.Server.TzinfoBinary
	}
	if c.Server.Socket != "" {
		engine.Socket = c.Server.Socket
	}
	if c.Server.DataDir != "" {
		engine.DataDir = c.Server.DataDir
	}
	if c.Server.ZoneinfoDir != "" {
		engine.ZoneinfoDir = c.Server.ZoneinfoDir
	}
	if c.Server.LogFile != "" {
		engine.LogFile = c.Server.LogFile
	}
	if c.Server.ReadyAttempts > 0 {
		engine.ReadyAttempts = c.Server.ReadyAttempts
	}
	if c.Server.ReadySeconds > 0 {
		engine.ReadyInterval = time.Duration(c.Server.ReadySeconds) * time.Second
	}
	return engine
}
