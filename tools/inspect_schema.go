// Prints the SQLite schema gorm migrates for the carbonledger models,
// tables first, then indexes.
package main

import (
	"fmt"
	"log"

	"github.com/localnerve/carbonledger/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sqliteObject struct {
	Name string
	SQL  string `gorm:"column:sql"`
}

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal(err)
	}

	for _, kind := range []string{"table", "index"} {
		var objects []sqliteObject
		err := db.Raw("SELECT name, sql FROM sqlite_master WHERE type = ? AND sql IS NOT NULL ORDER BY name", kind).
			Scan(&objects).Error
		if err != nil {
			log.Fatal(err)
		}

		for _, obj := range objects {
			fmt.Printf("\n=== %s: %s ===\n%s\n", kind, obj.Name, obj.SQL)
		}
	}
}
