package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/itemcore/internal/itemcodec"
	"github.com/udisondev/itemcore/internal/model"
)

// ErrCatalogMismatch — содержимое holder'а сохранено с другим каталогом.
var ErrCatalogMismatch = errors.New("stored items use a different catalog")

// ItemRepository хранит содержимое holder'ов по ключу владельца.
// Каждый предмет верхнего уровня — строка с деревом в формате itemcodec.
type ItemRepository struct {
	db     *pgxpool.Pool
	digest string
}

// NewItemRepository создаёт новый ItemRepository.
//
// Parameters:
//   - db: pool подключений
//   - digest: DigestHex текущего каталога
func NewItemRepository(db *pgxpool.Pool, digest string) *ItemRepository {
	return &ItemRepository{db: db, digest: digest}
}

// SaveHolder заменяет сохранённое содержимое holder'а в одной транзакции.
func (r *ItemRepository) SaveHolder(ctx context.Context, key string, items []*model.Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for holder %q: %w", key, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "holder", key, "error", err)
		}
	}()

	if err := r.SaveHolderTx(ctx, tx, key, items); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for holder %q: %w", key, err)
	}
	return nil
}

// SaveHolderTx выполняет SaveHolder внутри внешней транзакции.
func (r *ItemRepository) SaveHolderTx(ctx context.Context, tx pgx.Tx, key string, items []*model.Item) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO holders (owner_key, catalog_digest, item_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_key) DO UPDATE
		SET catalog_digest = EXCLUDED.catalog_digest,
		    item_count     = EXCLUDED.item_count,
		    revision       = holders.revision + 1,
		    saved_at       = now()
	`, key, r.digest, len(items))
	if err != nil {
		return fmt.Errorf("upserting holder %q: %w", key, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM holder_items WHERE owner_key = $1`, key); err != nil {
		return fmt.Errorf("deleting old items of holder %q: %w", key, err)
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for i, item := range items {
		rows = append(rows, []any{key, int32(i), item.ItemID(), int32(item.Count()), itemcodec.MarshalItem(item)})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"holder_items"},
		[]string{"owner_key", "position", "item_type", "item_count", "payload"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting items of holder %q: %w", key, err)
	}

	slog.Debug("saved holder items", "holder", key, "count", len(items))
	return nil
}

// LoadHolder загружает содержимое holder'а в исходном порядке.
// Возвращает nil, nil если holder не сохранялся.
func (r *ItemRepository) LoadHolder(ctx context.Context, f itemcodec.Factory, key string) ([]*model.Item, error) {
	var digest string
	err := r.db.QueryRow(ctx, `SELECT catalog_digest FROM holders WHERE owner_key = $1`, key).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying holder %q: %w", key, err)
	}
	if digest != r.digest {
		return nil, fmt.Errorf("%w: holder %q saved with %s", ErrCatalogMismatch, key, digest)
	}

	rows, err := r.db.Query(ctx, `
		SELECT payload FROM holder_items
		WHERE owner_key = $1
		ORDER BY position
	`, key)
	if err != nil {
		return nil, fmt.Errorf("querying items of holder %q: %w", key, err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scanning items of holder %q: %w", key, err)
	}

	items := make([]*model.Item, 0, len(payloads))
	for i, payload := range payloads {
		item, err := itemcodec.UnmarshalItem(f, payload)
		if err != nil {
			return nil, fmt.Errorf("decoding item %d of holder %q: %w", i, key, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteHolder удаляет holder и его предметы.
func (r *ItemRepository) DeleteHolder(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM holders WHERE owner_key = $1`, key); err != nil {
		return fmt.Errorf("deleting holder %q: %w", key, err)
	}
	return nil
}

// HolderKeys возвращает ключи всех сохранённых holder'ов.
func (r *ItemRepository) HolderKeys(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT owner_key FROM holders ORDER BY owner_key`)
	if err != nil {
		return nil, fmt.Errorf("querying holder keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning holder keys: %w", err)
	}
	return keys, nil
}

// CountByType возвращает суммарный count предметов верхнего уровня типа itemID.
func (r *ItemRepository) CountByType(ctx context.Context, itemID int32) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(item_count), 0) FROM holder_items WHERE item_type = $1`, itemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting items of type %d: %w", itemID, err)
	}
	return n, nil
}

// SaveHolders сохраняет несколько holder'ов в одной транзакции.
func (r *ItemRepository) SaveHolders(ctx context.Context, holders map[string][]*model.Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "holders", len(holders), "error", err)
		}
	}()

	for key, items := range holders {
		if err := r.SaveHolderTx(ctx, tx, key, items); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	slog.Info("holders saved", "holders", len(holders))
	return nil
}
