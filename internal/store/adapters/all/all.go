// Package all registra todos los adapters de storage disponibles.
package all

import (
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/fs"
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/memory"
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/mysql"
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/pg"
	_ "github.com/ezfintutor/tutormail/internal/store/adapters/sqlite"
)
