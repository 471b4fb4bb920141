package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/store"
	"github.com/kestrelhq/botgate/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db *sqlx.DB
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) CapabilityTags() ports.CapabilityTagRepository {
	return &capabilityTagRepo{db: r.db}
}

func (r *SqliteRepository) FallbackChains() ports.FallbackChainRepository {
	return &fallbackChainRepo{db: r.db}
}

func (r *SqliteRepository) CostStrategies() ports.CostStrategyRepository {
	return &costStrategyRepo{db: r.db}
}

func (r *SqliteRepository) ModelCatalog() ports.ModelCatalogRepository {
	return &modelCatalogRepo{db: r.db}
}

func (r *SqliteRepository) ProviderKeys() ports.ProviderKeyRepository {
	return &providerKeyRepo{db: r.db}
}

func (r *SqliteRepository) RoutingRules() ports.RoutingRuleRepository {
	return &routingRuleRepo{db: r.db}
}

func (r *SqliteRepository) Bots() ports.BotContextRepository {
	return &botRepo{db: r.db}
}

func (r *SqliteRepository) ComplexityConfigs() ports.ComplexityConfigRepository {
	return &complexityConfigRepo{db: r.db}
}

type capabilityTagRepo struct {
	db DB
}

func (r *capabilityTagRepo) ListEnabled(ctx context.Context) ([]domain.CapabilityTag, error) {
	var rows []model.CapabilityTagRow
	query := `SELECT * FROM capability_tags WHERE is_enabled = 1 ORDER BY priority DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	tags := make([]domain.CapabilityTag, 0, len(rows))
	for i := range rows {
		tag, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *capabilityTagRepo) GetByID(ctx context.Context, tagID string) (*domain.CapabilityTag, error) {
	var row model.CapabilityTagRow
	query := `SELECT * FROM capability_tags WHERE tag_id = ?`
	if err := r.db.GetContext(ctx, &row, query, tagID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	tag, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

type fallbackChainRepo struct {
	db DB
}

func (r *fallbackChainRepo) List(ctx context.Context) ([]domain.FallbackChain, error) {
	var rows []model.FallbackChainRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM fallback_chains`); err != nil {
		return nil, err
	}
	chains := make([]domain.FallbackChain, 0, len(rows))
	for i := range rows {
		chain, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return chains, nil
}

func (r *fallbackChainRepo) GetByID(ctx context.Context, chainID string) (*domain.FallbackChain, error) {
	var row model.FallbackChainRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM fallback_chains WHERE chain_id = ?`, chainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	chain, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

type costStrategyRepo struct {
	db DB
}

func (r *costStrategyRepo) List(ctx context.Context) ([]domain.CostStrategy, error) {
	var rows []model.CostStrategyRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM cost_strategies`); err != nil {
		return nil, err
	}
	strategies := make([]domain.CostStrategy, 0, len(rows))
	for i := range rows {
		strategies = append(strategies, rows[i].ToDomain())
	}
	return strategies, nil
}

func (r *costStrategyRepo) GetByID(ctx context.Context, strategyID string) (*domain.CostStrategy, error) {
	var row model.CostStrategyRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM cost_strategies WHERE strategy_id = ?`, strategyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	strategy := row.ToDomain()
	return &strategy, nil
}

type modelCatalogRepo struct {
	db DB
}

func (r *modelCatalogRepo) List(ctx context.Context) ([]domain.CatalogModel, error) {
	var rows []model.CatalogModelRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM model_catalog WHERE is_enabled = 1`); err != nil {
		return nil, err
	}
	models := make([]domain.CatalogModel, 0, len(rows))
	for i := range rows {
		models = append(models, rows[i].ToDomain())
	}
	return models, nil
}

func (r *modelCatalogRepo) GetByModel(ctx context.Context, modelName string) (*domain.CatalogModel, error) {
	var row model.CatalogModelRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM model_catalog WHERE model = ?`, modelName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m := row.ToDomain()
	return &m, nil
}

type providerKeyRepo struct {
	db DB
}

func (r *providerKeyRepo) GetByID(ctx context.Context, id string) (*domain.ProviderKey, error) {
	var row model.ProviderKeyRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM provider_keys WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	key := row.ToDomain()
	return &key, nil
}

func (r *providerKeyRepo) ListByVendor(ctx context.Context, vendor string) ([]domain.ProviderKey, error) {
	var rows []model.ProviderKeyRow
	query := `SELECT * FROM provider_keys WHERE vendor = ? AND is_enabled = 1`
	if err := r.db.SelectContext(ctx, &rows, query, vendor); err != nil {
		return nil, err
	}
	keys := make([]domain.ProviderKey, 0, len(rows))
	for i := range rows {
		keys = append(keys, rows[i].ToDomain())
	}
	return keys, nil
}

type routingRuleRepo struct {
	db DB
}

func (r *routingRuleRepo) GetByID(ctx context.Context, ruleID string) (*domain.RoutingRule, error) {
	var row model.RoutingRuleRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM routing_rules WHERE rule_id = ?`, ruleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToDomain()
}

func (r *routingRuleRepo) ListByBot(ctx context.Context, botID string) ([]domain.RoutingRule, error) {
	var rows []model.RoutingRuleRow
	query := `SELECT * FROM routing_rules WHERE bot_id = ? AND is_enabled = 1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, botID); err != nil {
		return nil, err
	}
	rules := make([]domain.RoutingRule, 0, len(rows))
	for i := range rows {
		rule, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

type botRepo struct {
	db DB
}

func (r *botRepo) GetRoutingContext(ctx context.Context, botID string) (*domain.BotRoutingContext, error) {
	var row model.BotRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM bots WHERE bot_id = ?`, botID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToDomain()
}

type complexityConfigRepo struct {
	db DB
}

func (r *complexityConfigRepo) GetByID(ctx context.Context, configID string) (*domain.ComplexityRoutingConfig, error) {
	var row model.ComplexityConfigRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM complexity_configs WHERE config_id = ?`, configID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToDomain()
}

var _ store.Repository = (*SqliteRepository)(nil)
