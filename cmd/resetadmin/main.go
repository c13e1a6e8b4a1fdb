// Command resetadmin creates or resets an administrator account directly
// against the configured database.
package main

import (
	"flag"
	"log"
	"strings"

	"github.com/tiendaf1/shop/internal/config"
	"github.com/tiendaf1/shop/internal/seed"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" || *password == "" {
		log.Fatal("usage: resetadmin -email <email> -password <password>")
	}

	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := seed.UpsertAdmin(db, e, *password); err != nil {
		log.Fatalf("upsert admin: %v", err)
	}
	log.Printf("admin %s is ready", e)
}
