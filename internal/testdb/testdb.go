// Package testdb opens throwaway sqlite databases carrying the settlement
// schema for repository tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schemes (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  scheme_type TEXT,
  document_name TEXT,
  raw_text_path TEXT,
  period_start DATETIME NOT NULL,
  period_end DATETIME NOT NULL,
  applicable_region TEXT,
  dealer_type_eligibility TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  approval_status TEXT NOT NULL DEFAULT 'pending',
  approved_by TEXT,
  approved_at DATETIME,
  upload_timestamp DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  code TEXT UNIQUE,
  category TEXT,
  subcategory TEXT,
  dealer_price NUMERIC NOT NULL DEFAULT 0,
  mrp NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  scheme_id TEXT NOT NULL,
  product_id TEXT,
  product_group_description TEXT,
  support_type TEXT NOT NULL,
  payout_type TEXT NOT NULL,
  payout_value NUMERIC NOT NULL DEFAULT 0,
  payout_unit TEXT,
  is_dealer_incentive INTEGER NOT NULL DEFAULT 0,
  dealer_contribution NUMERIC NOT NULL DEFAULT 0,
  total_payout NUMERIC NOT NULL DEFAULT 0,
  is_bundle_offer INTEGER NOT NULL DEFAULT 0,
  is_upgrade_offer INTEGER NOT NULL DEFAULT 0,
  is_slab_based INTEGER NOT NULL DEFAULT 0,
  free_item_description TEXT,
  conditions_exclusions TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS payout_slabs (
  id TEXT PRIMARY KEY,
  offer_id TEXT NOT NULL,
  min_quantity INTEGER NOT NULL,
  max_quantity INTEGER,
  payout_amount NUMERIC NOT NULL DEFAULT 0,
  dealer_contribution NUMERIC NOT NULL DEFAULT 0,
  total_payout NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS bundle_offers (
  id TEXT PRIMARY KEY,
  scheme_id TEXT NOT NULL,
  primary_product_id TEXT NOT NULL,
  bundle_product_id TEXT NOT NULL,
  bundle_price NUMERIC NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS dealer_targets (
  id TEXT PRIMARY KEY,
  scheme_id TEXT NOT NULL,
  description TEXT,
  target_product_id TEXT,
  product_group_description TEXT,
  target_quantity INTEGER,
  target_value NUMERIC,
  metric TEXT NOT NULL,
  achieved_units INTEGER NOT NULL DEFAULT 0,
  achieved_value NUMERIC NOT NULL DEFAULT 0,
  is_achieved INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS sales_transactions (
  id TEXT PRIMARY KEY,
  dealer_id TEXT NOT NULL,
  scheme_id TEXT,
  product_id TEXT NOT NULL,
  offer_id TEXT,
  quantity INTEGER NOT NULL,
  unit_dealer_price NUMERIC NOT NULL,
  gst_amount NUMERIC NOT NULL DEFAULT 0,
  net_price_after_support NUMERIC NOT NULL,
  net_price_per_unit NUMERIC NOT NULL,
  customer_discount_total NUMERIC NOT NULL DEFAULT 0,
  customer_discount_per_unit NUMERIC NOT NULL DEFAULT 0,
  dealer_incentive_total NUMERIC NOT NULL DEFAULT 0,
  dealer_incentive_per_unit NUMERIC NOT NULL DEFAULT 0,
  billing_ref TEXT,
  verification_status TEXT NOT NULL DEFAULT 'pending',
  sale_timestamp DATETIME NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS scheme_approvals (
  id TEXT PRIMARY KEY,
  scheme_id TEXT NOT NULL,
  decision TEXT NOT NULL,
  approver TEXT NOT NULL,
  notes TEXT,
  decided_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS target_update_failures (
  id TEXT PRIMARY KEY,
  transaction_id TEXT NOT NULL,
  reason TEXT NOT NULL,
  attempts INTEGER NOT NULL DEFAULT 0,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
}

// Open returns a fresh in-memory database seeded with the full schema.
// Each test gets its own database keyed by the test name.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	for _, stmt := range schemaStatements {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}

	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
