// Package postgres backs the generic PK/SK KV store contract (spec §4.C)
// with a single physical Postgres table, the way the teacher's repository
// adapters wrap one table per entity — except here one table serves three
// record kinds, tagged and dispatched on PK/SK prefix.
package postgres

import (
	"fmt"
)

// Record kind prefixes, per spec §4.C's encoding table.
const (
	siteHostSK = "#METADATA#"

	sitePK  = "SITE#"
	sitePathPK = "SITEPATH#"

	feedSKPrefix     = "FEED#"
	sitePathSKPrefix = "PATH#"
)

func sitePKFor(host string) string     { return sitePK + host }
func sitePathPKFor(host string) string { return sitePathPK + host }
func feedSK(url string) string         { return feedSKPrefix + url }
func sitePathSK(path string) string    { return sitePathSKPrefix + path }

// createTableDDL creates the kv_items table and the inverted (sk, pk) index
// that lets list_sites query by SK without a full scan.
func createTableDDL(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    pk         text NOT NULL,
    sk         text NOT NULL,
    attrs      jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now(),
    PRIMARY KEY (pk, sk)
);
CREATE INDEX IF NOT EXISTS %s_sk_pk_idx ON %s (sk, pk);
`, table, table, table)
}
