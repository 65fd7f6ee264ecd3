// mysql-initdb bootstraps a MySQL data directory for container deployments.
package main

import (
	"os"

	"github.com/astrolox/mysql-initdb/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
