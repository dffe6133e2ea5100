// Package mbtiles exports downloaded tiles to an MBTiles (SQLite) file.
package mbtiles

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/brendan-ward/tilemosaic/affine"
	"github.com/brendan-ward/tilemosaic/fetch"
	"github.com/brendan-ward/tilemosaic/tiles"
)

type MBtilesWriter struct {
	pool *sqlitex.Pool
}

// Create a tiles table structure that allows us to de-duplicate tile images
// shared by multiple tileIDs (e.g., blank tiles, ocean tiles)
const init_sql = `
CREATE TABLE IF NOT EXISTS metadata (name text, value text);
CREATE UNIQUE INDEX IF NOT EXISTS name ON metadata (name);

CREATE TABLE IF NOT EXISTS map (
	zoom_level INTEGER,
	tile_column INTEGER,
	tile_row INTEGER,
	tile_id TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row);

CREATE TABLE IF NOT EXISTS images (tile_data blob, tile_id text);
CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
CREATE VIEW IF NOT EXISTS tiles AS
	SELECT zoom_level, tile_column, tile_row, tile_data
	FROM map JOIN images ON images.tile_id = map.tile_id;
`

// Metadata of the tileset, written to the metadata table
type Metadata struct {
	Name        string
	Description string
	Format      string
	Zoom        uint8
	// Bounds in degrees: X is longitude, Y is latitude
	Bounds *affine.Bounds
}

func NewMBtilesWriter(path string, poolsize int) (*MBtilesWriter, error) {
	ext := filepath.Ext(path)
	if ext != ".mbtiles" {
		return nil, fmt.Errorf("path must end in .mbtiles")
	}

	// always overwrite
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		os.Remove(path)
	}

	pool, err := sqlitex.Open(path, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE|sqlite.SQLITE_OPEN_NOMUTEX|sqlite.SQLITE_OPEN_WAL, poolsize)
	if err != nil {
		return nil, err
	}

	db := &MBtilesWriter{
		pool: pool,
	}

	con, err := db.GetConnection(context.Background())
	if err != nil {
		return nil, err
	}
	defer db.CloseConnection(con)

	// create tables
	err = sqlitex.ExecScript(con, init_sql)
	if err != nil {
		return nil, fmt.Errorf("could not initialize database: %w", err)
	}

	return db, nil
}

func (db *MBtilesWriter) Close() error {
	if db.pool == nil {
		return nil
	}

	// make sure that anything pending is written
	con, err := db.GetConnection(context.Background())
	if err != nil {
		return err
	}
	// flush the WAL
	err = sqlitex.Exec(con, "PRAGMA wal_checkpoint;", nil)
	db.CloseConnection(con)

	if closeErr := db.pool.Close(); err == nil {
		err = closeErr
	}
	db.pool = nil
	return err
}

// GetConnection gets a sqlite.Conn from an open connection pool.
// CloseConnection(con) must be called to release the connection.
func (db *MBtilesWriter) GetConnection(ctx context.Context) (*sqlite.Conn, error) {
	con := db.pool.Get(ctx)
	if con == nil {
		return nil, fmt.Errorf("connection could not be opened")
	}
	return con, nil
}

// CloseConnection closes an open sqlite.Conn and returns it to the pool.
func (db *MBtilesWriter) CloseConnection(con *sqlite.Conn) {
	if con != nil {
		db.pool.Put(con)
	}
}

func writeMetadataItem(con *sqlite.Conn, key string, value interface{}) error {
	return sqlitex.Exec(con, "INSERT OR REPLACE INTO metadata (name,value) VALUES (?, ?)", nil, key, value)
}

func (db *MBtilesWriter) WriteMetadata(ctx context.Context, metadata Metadata) (err error) {
	if db == nil || db.pool == nil {
		return fmt.Errorf("cannot write to closed mbtiles database")
	}

	con, e := db.GetConnection(ctx)
	if e != nil {
		return e
	}
	defer db.CloseConnection(con)

	// create savepoint
	defer sqlitex.Save(con)(&err)

	bounds := metadata.Bounds
	items := []struct {
		key   string
		value interface{}
	}{
		{"name", metadata.Name},
		{"description", metadata.Description},
		{"minzoom", metadata.Zoom},
		{"maxzoom", metadata.Zoom},
		{"center", fmt.Sprintf("%.5f,%.5f,%v", (bounds.Xmin+bounds.Xmax)/2.0, (bounds.Ymin+bounds.Ymax)/2.0, metadata.Zoom)},
		{"bounds", fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", bounds.Xmin, bounds.Ymin, bounds.Xmax, bounds.Ymax)},
		{"type", "overlay"},
		{"format", metadata.Format},
		{"version", "1.0.0"},
	}
	for _, item := range items {
		if s, ok := item.value.(string); ok && s == "" {
			continue
		}
		if err = writeMetadataItem(con, item.key, item.value); err != nil {
			return err
		}
	}

	return nil
}

// Write the tile to the open connection
func WriteTile(con *sqlite.Conn, tile *tiles.TileID, data []byte) (err error) {
	// mbtiles rows use the TMS scheme: y is flipped
	y := (1 << tile.Zoom) - 1 - tile.Y

	defer sqlitex.Save(con)(&err)

	h := sha1.New()
	h.Write(data)
	id := hex.EncodeToString(h.Sum(nil))

	err = sqlitex.Exec(con, "INSERT OR REPLACE INTO images (tile_id, tile_data) values (?, ?)",
		nil, id, data)
	if err != nil {
		return fmt.Errorf("could not write tile %v to mbtiles: %w", tile, err)
	}

	err = sqlitex.Exec(con, "INSERT OR REPLACE INTO map (zoom_level, tile_column, tile_row, tile_id) values(?, ?, ?, ?)",
		nil, tile.Zoom, tile.X, y, id)
	if err != nil {
		return fmt.Errorf("could not write tile %v to mbtiles: %w", tile, err)
	}

	return nil
}

// Export writes every downloaded task to a new MBTiles file at path and
// returns the number of tiles written
func Export(ctx context.Context, path string, set *tiles.TileSet, tasks []*fetch.Task, metadata Metadata, logger *slog.Logger) (count int, err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "mbtiles")

	db, err := NewMBtilesWriter(path, 1)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	if metadata.Bounds == nil {
		metadata.Bounds = set.GeoBounds()
	}
	metadata.Zoom = set.Zoom
	if err = db.WriteMetadata(ctx, metadata); err != nil {
		return 0, fmt.Errorf("write metadata: %w", err)
	}

	con, err := db.GetConnection(ctx)
	if err != nil {
		return 0, err
	}
	defer db.CloseConnection(con)

	for _, task := range tasks {
		if !task.Succeeded() {
			continue
		}
		if err = ctx.Err(); err != nil {
			return count, err
		}
		data, e := task.Bytes()
		if e != nil {
			logger.Warn("skipping tile", "tile", task.Tile.String(), "error", e)
			continue
		}
		if err = WriteTile(con, &task.Tile, data); err != nil {
			return count, err
		}
		count++
	}

	logger.Debug("exported tiles", "path", path, "count", count)
	return count, nil
}
