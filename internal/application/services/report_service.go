package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

// ReportService runs ad-hoc admin SELECTs against the archive schema.
// Every query is parsed first: one statement, SELECT only, tables from the
// reportable allow-list. A LIMIT is injected when the query has none and
// lowered when it asks for more than ReportMaxRows.
type ReportService struct {
	db *sql.DB

	// The TiDB parser keeps internal state between Parse calls
	mu     sync.Mutex
	parser *parser.Parser
}

// NewReportService creates a new ReportService
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{
		db:     db,
		parser: parser.New(),
	}
}

// ReportResult is the outcome of one report query
type ReportResult struct {
	SQL   string                   `json:"sql"`
	Rows  []map[string]interface{} `json:"rows"`
	Count int                      `json:"count"`
}

// tableCollector gathers every table name a statement touches, including
// tables inside subqueries and joins.
type tableCollector struct {
	tables []string
}

func (c *tableCollector) Enter(in ast.Node) (ast.Node, bool) {
	if t, ok := in.(*ast.TableName); ok {
		if name := t.Name.O; name != "" {
			c.tables = append(c.tables, name)
		}
	}
	return in, false
}

func (c *tableCollector) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}

// ValidateQuery parses and checks a report query, returning the SQL that
// will actually run (with a LIMIT appended when the query had none).
func (s *ReportService) ValidateQuery(rawSQL string) (string, error) {
	rawSQL = strings.TrimSpace(rawSQL)
	if rawSQL == "" {
		return "", errors.NewValidationError("sql", "Query is required")
	}

	s.mu.Lock()
	stmtNodes, _, err := s.parser.Parse(rawSQL, "", "")
	s.mu.Unlock()
	if err != nil {
		return "", errors.NewValidationError("sql", fmt.Sprintf("Parse error: %v", err))
	}
	if len(stmtNodes) != 1 {
		return "", errors.NewValidationError("sql", "Only a single statement is allowed")
	}

	selectStmt, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok {
		return "", errors.NewValidationError("sql", "Only SELECT statements are allowed")
	}

	collector := &tableCollector{}
	selectStmt.Accept(collector)
	for _, table := range collector.tables {
		if !constants.IsReportableTable(table) {
			return "", errors.NewValidationError("sql", fmt.Sprintf("Table not allowed in reports: %s", table))
		}
	}

	// Rewrite the limit in the AST before restore so the rendered SQL is
	// the query that actually runs
	if selectStmt.Limit == nil {
		selectStmt.Limit = &ast.Limit{Count: ast.NewValueExpr(uint64(constants.ReportDefaultLimit), "", "")}
	} else if ve, ok := selectStmt.Limit.Count.(ast.ValueExpr); ok && limitExceeds(ve.GetValue(), constants.ReportMaxRows) {
		ve.SetValue(uint64(constants.ReportMaxRows))
	}

	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := selectStmt.Restore(restoreCtx); err != nil {
		return "", errors.NewValidationError("sql", fmt.Sprintf("Restore error: %v", err))
	}
	return sb.String(), nil
}

// limitExceeds checks the parsed LIMIT count, which the parser may carry
// as either signed or unsigned
func limitExceeds(v interface{}, max uint64) bool {
	switch n := v.(type) {
	case uint64:
		return n > max
	case int64:
		return n > int64(max)
	}
	return false
}

// RunQuery validates and executes a report query
func (s *ReportService) RunQuery(ctx context.Context, rawSQL string) (*ReportResult, error) {
	finalSQL, err := s.ValidateQuery(rawSQL)
	if err != nil {
		return nil, err
	}

	rows, err := persistence.QueryMaps(ctx, s.db, finalSQL)
	if err != nil {
		return nil, fmt.Errorf("report query failed: %w", err)
	}
	if len(rows) > constants.ReportMaxRows {
		rows = rows[:constants.ReportMaxRows]
	}

	log.Printf("📝 Report query returned %d rows", len(rows))
	return &ReportResult{SQL: finalSQL, Rows: rows, Count: len(rows)}, nil
}

// ReportableTables lists the tables report queries may read
func (s *ReportService) ReportableTables() []string {
	return constants.ReportableTables()
}
