package main

import (
	"variaredirect/internal/database"
	"variaredirect/internal/domain/paths"
	"variaredirect/internal/repo"
)

// initializeApplication opens the database and builds the stores.
func initializeApplication() (store *repo.Store, db *database.Database, err error) {
	db, err = database.InitDB(paths.DBFilePath)
	if err != nil {
		return nil, nil, err
	}
	return repo.InitStores(db.DB), db, nil
}
