// Package storageutils builds a storage.Driver from configuration.
package storageutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yash3561/Nexus/pkg/storage"
	"github.com/Yash3561/Nexus/pkg/storage/file"
	"github.com/Yash3561/Nexus/pkg/storage/inmemory"
	"github.com/Yash3561/Nexus/pkg/storage/postgres"
	"github.com/Yash3561/Nexus/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	ProviderType string
	Root         string
	SQLitePath   string
	PostgresDSN  string
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	switch o.ProviderType {
	case "", "file":
		return file.NewDriver(o.Root)
	case "memory":
		return inmemory.NewDriver(), nil
	case "sqlite":
		if o.SQLitePath == "" {
			return nil, errors.New("sqlite storage requires storage.sqlite_path")
		}
		return sqlite.NewSQLiteDriver(o.SQLitePath)
	case "postgres":
		if o.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires storage.postgres_dsn")
		}
		return postgres.NewDriver(ctx, o.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", o.ProviderType)
	}
}
