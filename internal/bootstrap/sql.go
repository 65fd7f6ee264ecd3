package bootstrap

import "strings"

// Configuration-supplied names and passwords are interpolated into SQL text
// piped to the client, so everything goes through explicit quoting:
// identifiers are backtick-quoted with backtick doubling, string values are
// single-quoted with escaping. Values the quoting cannot make safe do not
// exist — any byte sequence round-trips.

// quoteIdentifier quotes a schema object name.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// quoteString quotes a string literal.
func quoteString(value string) string {
	return "'" + stringEscaper.Replace(value) + "'"
}

// account renders a user@host spec reachable from any host.
func account(name string) string {
	return quoteString(name) + "@'%'"
}

// purgeStatements removes every pre-existing login account. The
// insecure-initialize mode leaves an unauthenticated root-equivalent
// account behind that must not survive provisioning. No FLUSH PRIVILEGES
// here: the running instance keeps serving this process on its in-memory
// grant tables until the first account-creation batch flushes.
func purgeStatements() []string {
	return []string{"DELETE FROM mysql.user ;"}
}

// adminStatements creates an account with full privileges everywhere and
// drops the conventional pre-existing test database as hardening.
func adminStatements(name, password string) []string {
	return []string{
		"CREATE USER " + account(name) + " IDENTIFIED BY " + quoteString(password) + " ;",
		"GRANT ALL ON *.* TO " + account(name) + " WITH GRANT OPTION ;",
		"DROP DATABASE IF EXISTS `test` ;",
		"FLUSH PRIVILEGES ;",
	}
}

// databaseStatement creates the application database if absent.
func databaseStatement(name string) string {
	return "CREATE DATABASE IF NOT EXISTS " + quoteIdentifier(name) + " ;"
}

// userStatements creates a standard account. When a database is configured
// the grant is scoped to it; otherwise no database-scoped grant is issued.
// No FLUSH PRIVILEGES: CREATE USER and GRANT update the grant cache on
// their own, and a flush here would make the purge's table delete effective
// while the orchestrator may still be authenticating as a purged account
// (no administrative account is created when only a standard user is
// configured).
func userStatements(name, password, database string) []string {
	stmts := []string{
		"CREATE USER " + account(name) + " IDENTIFIED BY " + quoteString(password) + " ;",
	}
	if database != "" {
		stmts = append(stmts, "GRANT ALL ON "+quoteIdentifier(database)+".* TO "+account(name)+" ;")
	}
	return stmts
}

// expireStatement forces a must-change-on-next-login state.
func expireStatement(name string) string {
	return "ALTER USER " + account(name) + " PASSWORD EXPIRE ;"
}
