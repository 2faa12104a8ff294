package entities

import (
	"database/sql"
	"fmt"

	"github.com/kataras/golog"
	_ "github.com/mattn/go-sqlite3"
)

// TableName is the table the agent's SQL tool queries.
const TableName = "entity_data"

const createTableStmt = `CREATE TABLE ` + TableName + ` (
	company TEXT,
	year INTEGER,
	source_doc TEXT,
	revenue REAL,
	revenue_reasoning TEXT,
	revenue_unit TEXT,
	revenue_unit_reasoning TEXT,
	risks TEXT,
	risks_reasoning TEXT,
	human_capital INTEGER,
	human_capital_reasoning TEXT
)`

// SaveSQLite writes the aggregated rows into the entity_data table of
// the SQLite file at dbPath, replacing any previous table.
func SaveSQLite(dbPath string, rows []Row) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.Exec(`DROP TABLE IF EXISTS ` + TableName); err != nil {
		return fmt.Errorf("failed to drop %s: %w", TableName, err)
	}
	if _, err := db.Exec(createTableStmt); err != nil {
		return fmt.Errorf("failed to create %s: %w", TableName, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO ` + TableName + ` VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			row.Company,
			row.Year,
			row.SourceDoc,
			row.Revenue,
			row.RevenueReasoning,
			row.RevenueUnit,
			row.RevenueUnitReasoning,
			row.Risks,
			row.RisksReasoning,
			row.HumanCapital,
			row.HumanCapitalReasoning,
		)
		if err != nil {
			return fmt.Errorf("failed to insert row for %s %d: %w", row.Company, row.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	golog.Infof("saved %d entity rows to %s", len(rows), dbPath)
	return nil
}
