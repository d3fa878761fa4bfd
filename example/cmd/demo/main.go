package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/mickamy/rowhook"
	"github.com/mickamy/rowhook/memdb"
)

func main() {
	dsn := getenv("CHANGES_DB", ":memory:")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)
	// :memory: databases are per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)

	ctx := rowhook.WithOperator(context.Background(), "demo-user")
	ctx = rowhook.WithTraceID(ctx, "trace-demo-001")
	ctx = rowhook.WithReason(ctx, "demo run")

	// Change tables for everything we are about to observe
	if err := rowhook.Migrate(ctx, db, rowhook.SchemaConfig{}, "orders"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// An in-memory engine with one table
	eng := memdb.New()
	if err := eng.CreateTable("orders", "customer_id", "amount", "status"); err != nil {
		log.Fatalf("create table: %v", err)
	}

	// Record every change with named columns
	rec := rowhook.NewRecorder(rowhook.Config{
		Columns: map[string][]string{"orders": {"customer_id", "amount", "status"}},
	})
	conn := rowhook.Wrap(eng)
	conn.SetPreupdateHook(rec.Hook())

	// INSERT (captured as after)
	id, err := eng.Insert("orders", int64(42), 1200.0, "new")
	if err != nil {
		log.Fatalf("insert: %v", err)
	}

	// UPDATE (captured as before and after)
	if err := eng.Update("orders", id, int64(42), 1500.0, "paid"); err != nil {
		log.Fatalf("update: %v", err)
	}

	// DELETE (captured as before)
	if err := eng.Delete("orders", id); err != nil {
		log.Fatalf("delete: %v", err)
	}

	if err := rec.Flush(ctx, db); err != nil {
		log.Fatalf("flush: %v", err)
	}

	// Show results
	var cnt int
	if err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM orders_changes`).Scan(&cnt); err != nil {
		log.Fatalf("count changes: %v", err)
	}
	fmt.Printf("change rows = %d (expected 3)\n", cnt)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
