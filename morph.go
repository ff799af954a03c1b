package morph

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/morph/builder"
	"gorm.io/morph/config"
	"gorm.io/morph/dialect"
	"gorm.io/morph/logger"
	"gorm.io/morph/migrator"
	"gorm.io/morph/schema"
)

// Config morph config
type Config struct {
	// NamingStrategy tables, columns and constraints naming strategy
	NamingStrategy schema.Namer
	// Logger statement and schema build logger
	Logger logger.Interface
	// SlowThreshold threshold of the default logger
	SlowThreshold time.Duration
	// Schema field, type and template defaults
	Schema *config.Config
	// Dialector database dialect
	Dialector dialect.Dialector
	// ConnPool db conn pool
	ConnPool ConnPool
}

// DB morph DB definition
type DB struct {
	*Config
	Registry *schema.Registry
	Error    error

	executor builder.Executor
	inTx     bool
}

// Open initialize db session based on dialector
func Open(dialector dialect.Dialector, opts ...ConfigOption) (db *DB, err error) {
	config := &Config{Dialector: dialector}
	for _, opt := range opts {
		opt(config)
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Schema == nil {
		config.Schema = defaultSchemaConfig()
	}

	if config.Logger == nil {
		slow := config.SlowThreshold
		if slow == 0 {
			slow = 200 * time.Millisecond
		}
		config.Logger = logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold: slow,
			LogLevel:      logger.ParseLevel(config.Schema.LogLevel),
		})
	}

	if config.Dialector == nil {
		config.Dialector = dialect.Common{}
	}

	if config.ConnPool == nil {
		if initializer, ok := config.Dialector.(dialect.Initializer); ok {
			var pool *sql.DB
			if pool, err = initializer.Initialize(context.Background()); err != nil {
				return nil, fmt.Errorf("initialize %s: %w", config.Dialector.Name(), err)
			}
			config.ConnPool = pool
		}
	}

	db = &DB{
		Config:   config,
		Registry: schema.NewRegistry(config.NamingStrategy, config.Schema, config.Logger),
		executor: config.ConnPool,
	}
	return db, nil
}

func defaultSchemaConfig() *config.Config {
	if path := os.Getenv("MORPH_CONFIG"); path != "" {
		if cfg, err := config.LoadFile(path); err == nil {
			return cfg
		}
	}
	return config.Default()
}

// AddError add error to db
func (db *DB) AddError(err error) error {
	if db.Error == nil {
		db.Error = err
	} else if err != nil {
		db.Error = fmt.Errorf("%v; %w", db.Error, err)
	}
	return db.Error
}

// Register declares a model, see schema.Registry.Register
func (db *DB) Register(name string, opts ...schema.MetaOption) *schema.Meta {
	meta, err := db.Registry.Register(name, opts...)
	if err != nil {
		db.AddError(err)
	}
	return meta
}

// Meta registered meta of model
func (db *DB) Meta(model string) (*schema.Meta, error) {
	return db.Registry.Lookup(model)
}

// Build builds the schema once, errors met while registering models are returned first
func (db *DB) Build(ctx context.Context) error {
	if db.Error != nil {
		return db.Error
	}
	return db.Registry.Build(ctx)
}

// Query new query on the table of meta, bound to the current connection or transaction
func (db *DB) Query(meta *schema.Meta) builder.Builder {
	query := builder.New(meta.Table, db.executor, db.Dialector, db.Logger)
	query.PrimaryKey = meta.PrimaryColumn()
	return query
}

// Transaction start a transaction as a block, return error will rollback, otherwise to commit
func (db *DB) Transaction(ctx context.Context, fc func(schema.Querier) error) (err error) {
	if db.inTx {
		return fc(db)
	}

	beginner, ok := db.executor.(TxBeginner)
	if !ok {
		return ErrInvalidTransaction
	}

	sqlTx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	panicked := true
	defer func() {
		// Make sure to rollback when panic, Block error or Commit error
		if panicked || err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &DB{Config: db.Config, Registry: db.Registry, executor: sqlTx, inTx: true}
	err = fc(tx)

	if err == nil {
		err = sqlTx.Commit()
	}

	panicked = false
	return
}

func (db *DB) relation(model schema.Model, name string) (schema.RelationField, error) {
	if db.Registry.State() != schema.Finalized {
		return nil, fmt.Errorf("%w: schema is not built", ErrState)
	}

	meta, err := db.Registry.Lookup(model.ModelName())
	if err != nil {
		return nil, err
	}

	field, err := meta.Field(name)
	if err != nil {
		return nil, err
	}

	relation, ok := field.(schema.RelationField)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a relation", ErrType, meta.Name, name)
	}
	return relation, nil
}

// Set sets relation name of model, reversed relations reconcile the related rows
func (db *DB) Set(ctx context.Context, model schema.Model, name string, value interface{}) error {
	relation, err := db.relation(model, name)
	if err != nil {
		return err
	}
	return relation.Set(ctx, db, model, value)
}

// Get value of relation name of model
func (db *DB) Get(model schema.Model, name string) (interface{}, error) {
	relation, err := db.relation(model, name)
	if err != nil {
		return nil, err
	}
	return relation.Get(model)
}

// Where adds the conditions of `relation op value` to query
func (db *DB) Where(query builder.Builder, model, name string, op builder.Operator, value interface{}) builder.Builder {
	relation, err := db.relation(schema.NewRecord(model, nil), name)
	if err != nil {
		query.AddError(err)
		return query
	}
	return relation.Where(query, op, value, builder.And)
}

// Fill sets values of model through the fields of its meta
func (db *DB) Fill(ctx context.Context, model schema.Model, values map[string]interface{}) error {
	meta, err := db.Registry.Lookup(model.ModelName())
	if err != nil {
		return err
	}
	return meta.Fill(ctx, db, model, values)
}

// Migrator returns migrator creating the tables of the built metas
func (db *DB) Migrator() *migrator.Migrator {
	return migrator.New(migrator.Config{
		Dialector: db.Dialector,
		Executor:  db.executor,
		Logger:    db.Logger,
	})
}

// Close closes the connection pool when it can be closed
func (db *DB) Close() error {
	if closer, ok := db.ConnPool.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
