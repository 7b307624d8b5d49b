package repositories

import (
	"context"
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by a DocumentStore when no document exists for a key
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is a key-value store for opaque JSON documents.
// Put always replaces the whole document.
type DocumentStore interface {
	Put(ctx context.Context, key string, doc []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// Storage drivers accepted by NewDocumentStore
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// StoreOptions carries the settings for every backend. Only the fields of the
// selected driver are read.
type StoreOptions struct {
	Driver        string
	DataDir       string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewDocumentStore opens the backend named by opts.Driver. The returned close
// function releases the backend's resources and is never nil.
func NewDocumentStore(ctx context.Context, opts StoreOptions) (DocumentStore, func() error, error) {
	switch opts.Driver {
	case "", DriverFile:
		store, err := NewFileDocumentStore(opts.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	case DriverSQLite:
		store, err := OpenSQLiteDocumentStore(opts.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case DriverRedis:
		store, err := OpenRedisDocumentStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
