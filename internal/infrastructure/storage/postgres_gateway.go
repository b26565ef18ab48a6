package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"BatchIngest/internal/domain"
	"BatchIngest/internal/ports"
)

// PostgresGateway persists raw payloads, normalized records, and error
// records into Postgres. Every method is a single-record transaction;
// a failure never touches sibling records of the same batch.
type PostgresGateway struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.Store = (*PostgresGateway)(nil)

// NewPostgresGateway wires a sql.DB implementation.
func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*PostgresGateway, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresGateway(db), nil
}

// ArchiveRaw appends one payload to the raw table for its record type.
// Archiving succeeds or fails independently of downstream validation.
func (g *PostgresGateway) ArchiveRaw(ctx context.Context, raw domain.RawRecord) error {
	if g.db == nil {
		return nil
	}

	payload, err := json.Marshal(raw.Payload)
	if err != nil {
		return fmt.Errorf("marshal raw payload: %w", err)
	}

	query, args, err := g.builder.
		Insert("raw_" + string(raw.RecordType)).
		Columns("payload", "timestamp").
		Values(payload, raw.IngestedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build raw insert: %w", err)
	}

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("archive raw %s: %w", raw.RecordType, err)
	}
	return nil
}

// UpsertProduct inserts or updates one product keyed by productid.
// Later ingestions of the same id overwrite prior fields.
func (g *PostgresGateway) UpsertProduct(ctx context.Context, product domain.Product) error {
	if g.db == nil {
		return nil
	}

	query, args, err := g.builder.
		Insert("products").
		Columns("productid", "name", "quantity", "category", "subcategory").
		Values(product.ProductID, product.Name, product.Quantity, product.Category, product.Subcategory).
		Suffix(`ON CONFLICT (productid) DO UPDATE
			SET name = EXCLUDED.name,
			    quantity = EXCLUDED.quantity,
			    category = EXCLUDED.category,
			    subcategory = EXCLUDED.subcategory`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build product upsert: %w", err)
	}

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return classifyError(err, "products")
	}
	return nil
}

// UpsertOrder inserts or updates one order keyed by orderid. An order
// referencing an unknown productid comes back as a foreign-key
// ConstraintViolation.
func (g *PostgresGateway) UpsertOrder(ctx context.Context, order domain.Order) error {
	if g.db == nil {
		return nil
	}

	query, args, err := g.builder.
		Insert("orders").
		Columns("orderid", "productid", "currency", "quantity", "shippingcost",
			"amount", "channel", "channelgroup", "campaign", "datetime").
		Values(order.OrderID, order.ProductID, order.Currency, order.Quantity,
			order.ShippingCost, order.Amount, order.Channel, order.ChannelGroup,
			order.Campaign, order.OrderDateTime).
		Suffix(`ON CONFLICT (orderid) DO UPDATE
			SET productid = EXCLUDED.productid,
			    currency = EXCLUDED.currency,
			    quantity = EXCLUDED.quantity,
			    shippingcost = EXCLUDED.shippingcost,
			    amount = EXCLUDED.amount,
			    channel = EXCLUDED.channel,
			    channelgroup = EXCLUDED.channelgroup,
			    campaign = EXCLUDED.campaign,
			    datetime = EXCLUDED.datetime`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build order upsert: %w", err)
	}

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return classifyError(err, "orders")
	}
	return nil
}

// LogError writes one error record. A repeated recordid overwrites the
// previous entry, so the log keeps the latest failure per record.
func (g *PostgresGateway) LogError(ctx context.Context, record domain.ErrorRecord) error {
	if g.db == nil {
		return nil
	}

	details, err := json.Marshal(record.Errors)
	if err != nil {
		return fmt.Errorf("marshal error details: %w", err)
	}

	query, args, err := g.builder.
		Insert("errors").
		Columns("recordid", "recordtype", "errors", "timestamp").
		Values(record.RecordID, record.RecordType, details, record.LoggedAt).
		Suffix(`ON CONFLICT (recordid) DO UPDATE
			SET recordtype = EXCLUDED.recordtype,
			    errors = EXCLUDED.errors,
			    timestamp = EXCLUDED.timestamp`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build error insert: %w", err)
	}

	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("log error record %s: %w", record.RecordID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (g *PostgresGateway) Close() error {
	if g.db == nil {
		return nil
	}
	return g.db.Close()
}

// classifyError maps Postgres error codes onto the constraint taxonomy.
// Anything that is not a recognized constraint failure is returned as a
// plain wrapped error.
func classifyError(err error, table string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("write %s: %w", table, err)
	}

	violation := &domain.ConstraintViolation{Table: table, Detail: pqErr.Message, Err: err}
	switch {
	case pqErr.Code == "23503":
		violation.Kind = domain.ViolationForeignKey
	case pqErr.Code == "23505":
		violation.Kind = domain.ViolationUnique
	case pqErr.Code == "23502", pqErr.Code == "23514", pqErr.Code.Class() == "22":
		violation.Kind = domain.ViolationType
	default:
		return fmt.Errorf("write %s: %w", table, err)
	}
	return violation
}
