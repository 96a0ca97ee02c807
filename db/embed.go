// Package db embeds the store schema and default seed data.
package db

import _ "embed"

// Schema is the idempotent DDL for categories, products, variations,
// gallery images and API keys. It is applied on every start.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedCategories is the default category list loaded by cmd/seed-db.
//
//go:embed seed/categories.json
var SeedCategories []byte
