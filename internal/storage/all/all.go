// Package all registers every sink backend with the storage factory.
// cmd binaries blank-import it; config decides which backend actually runs.
package all

import (
	_ "tennisetl/internal/storage/mssql"
	_ "tennisetl/internal/storage/postgres"
	_ "tennisetl/internal/storage/sqlite"
)
