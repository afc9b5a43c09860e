package main

// SQL drivers available to `tabula validate --driver`.
import (
	_ "github.com/duckdb/duckdb-go/v2" // duckdb
	_ "github.com/jackc/pgx/v5/stdlib" // pgx
	_ "github.com/mattn/go-sqlite3"    // sqlite3
)
