//go:build !rocksdb
// +build !rocksdb

package db

import "fmt"

// NewRocksDBProvider reports that the binary was built without RocksDB.
func NewRocksDBProvider(directory string) (DatabaseProvider, error) {
	return nil, fmt.Errorf("RocksDB support not compiled in; build with -tags rocksdb to open %s", directory)
}
