// Package store persists learned value tables and training histories.
//
// Two backends implement TableStore: ParquetStore writes a single
// zstd-compressed Parquet file and SQLiteStore writes a SQLite database.
// ForPath picks one from the file extension, so callers only deal with paths:
//
//	rows, err := store.LoadTable("qtable.parquet")
//	if errors.Is(err, store.ErrTableNotFound) {
//		// start from an empty table
//	}
//
// Episode histories are always written as Parquet via WriteEpisodes.
package store
