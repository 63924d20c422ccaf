package tables

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/abimatch/dbtypes"
	"github.com/ethpandaops/abimatch/types"
)

var logger = logrus.StandardLogger().WithField("module", "tables")

// Engine executes relational operations on top of a sql database.
// All relations created through an engine live in scratch tables that are
// dropped when the engine is closed.
type Engine struct {
	db         *sqlx.DB
	engineType dbtypes.DBEngineType

	tableSeq    uint64
	tablePrefix string
	tablesMutex sync.Mutex
	tables      []string
}

// NewEngine opens a database connection for the configured engine type.
// An empty configuration yields an in-memory sqlite engine.
func NewEngine(config *types.Config) (*Engine, error) {
	engine := &Engine{
		tablePrefix: fmt.Sprintf("rel_%08x", rand.Uint32()),
	}

	switch config.Database.Engine {
	case "", "sqlite":
		sqliteFile := config.Database.Sqlite.File
		if sqliteFile == "" {
			sqliteFile = ":memory:"
		}

		dbConn, err := sqlx.Open("sqlite", sqliteFile)
		if err != nil {
			return nil, fmt.Errorf("error opening sqlite database: %w", err)
		}
		// a private in-memory db exists per connection, so the pool must not grow
		dbConn.SetMaxOpenConns(1)
		dbConn.SetConnMaxIdleTime(0)
		dbConn.SetConnMaxLifetime(0)

		engine.db = dbConn
		engine.engineType = dbtypes.DBEngineSqlite
	case "pgsql":
		pgsqlCfg := config.Database.Pgsql
		dbConn, err := sqlx.Open("pgx", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			pgsqlCfg.Username, pgsqlCfg.Password, pgsqlCfg.Host, pgsqlCfg.Port, pgsqlCfg.Name))
		if err != nil {
			return nil, fmt.Errorf("error opening pgsql database: %w", err)
		}

		maxOpenConns := config.Database.MaxOpenConns
		if maxOpenConns == 0 {
			maxOpenConns = 10
		}
		maxIdleConns := config.Database.MaxIdleConns
		if maxIdleConns == 0 {
			maxIdleConns = 2
		}
		dbConn.SetConnMaxIdleTime(time.Second * 30)
		dbConn.SetMaxOpenConns(maxOpenConns)
		dbConn.SetMaxIdleConns(maxIdleConns)

		engine.db = dbConn
		engine.engineType = dbtypes.DBEnginePgsql
	default:
		return nil, fmt.Errorf("unknown database engine type: %v", config.Database.Engine)
	}

	err := engine.db.Ping()
	if err != nil {
		engine.db.Close()
		return nil, fmt.Errorf("error pinging %v database: %w", config.Database.Engine, err)
	}

	logger.Debugf("initialized %v table engine (prefix %v)", config.Database.Engine, engine.tablePrefix)
	return engine, nil
}

// EngineQuery returns the query variant matching the engine type
func (e *Engine) EngineQuery(queryMap map[dbtypes.DBEngineType]string) string {
	if queryMap[e.engineType] != "" {
		return queryMap[e.engineType]
	}
	return queryMap[dbtypes.DBEngineAny]
}

// Close drops all scratch tables created through this engine and closes the db connection
func (e *Engine) Close() error {
	e.tablesMutex.Lock()
	tables := e.tables
	e.tables = nil
	e.tablesMutex.Unlock()

	for _, table := range tables {
		_, err := e.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %v`, table))
		if err != nil {
			logger.WithError(err).Warnf("could not drop scratch table %v", table)
		}
	}

	return e.db.Close()
}

func (e *Engine) allocTable() string {
	e.tablesMutex.Lock()
	defer e.tablesMutex.Unlock()

	e.tableSeq++
	table := fmt.Sprintf("%s_%d", e.tablePrefix, e.tableSeq)
	e.tables = append(e.tables, table)
	return table
}

func (e *Engine) dropTable(ctx context.Context, table string) error {
	e.tablesMutex.Lock()
	for idx, name := range e.tables {
		if name == table {
			e.tables = append(e.tables[:idx], e.tables[idx+1:]...)
			break
		}
	}
	e.tablesMutex.Unlock()

	_, err := e.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %v`, table))
	return err
}

// materialize creates a new scratch table from a select statement and wraps it as a relation
func (e *Engine) materialize(ctx context.Context, columns []Column, selectSql string, args ...any) (*Relation, error) {
	table := e.allocTable()
	_, err := e.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %v AS %v`, table, selectSql), args...)
	if err != nil {
		return nil, err
	}

	return &Relation{
		engine:  e,
		table:   table,
		columns: columns,
	}, nil
}

// quoteIdent quotes an identifier for use in a query.
// Identifiers originate from caller configuration, so they are validated instead of escaped.
func quoteIdent(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}
	if strings.ContainsAny(name, "\"'`;\x00") {
		return "", fmt.Errorf("invalid identifier: %q", name)
	}
	return `"` + name + `"`, nil
}
