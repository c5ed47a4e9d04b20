// Package all wires every built-in storage backend into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their open functions with the storage package. In other
// words, importing this package makes the following storage kinds available
// at runtime:
//
//   - "mssql"    (sakilaetl/internal/storage/mssql)
//   - "postgres" (sakilaetl/internal/storage/postgres)
//   - "mysql"    (sakilaetl/internal/storage/mysql)
//   - "sqlite"   (sakilaetl/internal/storage/sqlite)
//
// A binary that only needs a subset of backends can blank-import the
// individual backend packages instead.
package all

import (
	_ "sakilaetl/internal/storage/mssql"
	_ "sakilaetl/internal/storage/mysql"
	_ "sakilaetl/internal/storage/postgres"
	_ "sakilaetl/internal/storage/sqlite"
)
