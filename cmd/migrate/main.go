package main

import (
	"flag"
	"log"

	"soltracker/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back the last migration instead of migrating up")
	flag.Parse()

	db := config.InitDB()

	if *down {
		config.RollbackMigration(db)
		return
	}
	config.ExecuteMigrations(db)
	log.Println("Done")
}
