package approval

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindMatchingChain(ctx context.Context, companyID string, entityType EntityType, amount decimal.Decimal) (*ApprovalChain, error)
	CreateRequest(ctx context.Context, request *ApprovalRequest) error
	FindRequestByID(ctx context.Context, companyID string, id string) (*ApprovalRequest, error)
	FindRequestByEntity(ctx context.Context, companyID string, entityType EntityType, entityID string) (*ApprovalRequest, error)
	ListPending(ctx context.Context, companyID string, maxRoleLevel int) ([]ApprovalRequest, error)
	AdvanceRequest(ctx context.Context, request *ApprovalRequest, expectedVersion int) error
	AppendAction(ctx context.Context, action *ApprovalAction) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// FindMatchingChain returns the highest-priority active chain whose amount
// window contains the amount. gorm.ErrRecordNotFound means the entity needs
// no approval.
func (r *repository) FindMatchingChain(ctx context.Context, companyID string, entityType EntityType, amount decimal.Decimal) (*ApprovalChain, error) {
	var chain ApprovalChain
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Scopes(tenant.Scope(companyID)).
		Where("entity_type = ? AND is_active = true", entityType).
		Where("minimum_amount <= ?", amount).
		Where("maximum_amount IS NULL OR maximum_amount >= ?", amount).
		Order("priority DESC").
		First(&chain).Error
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

func (r *repository) CreateRequest(ctx context.Context, request *ApprovalRequest) error {
	return r.db.WithContext(ctx).Omit("Chain", "History").Create(request).Error
}

func (r *repository) FindRequestByID(ctx context.Context, companyID string, id string) (*ApprovalRequest, error) {
	var request ApprovalRequest
	err := r.db.WithContext(ctx).
		Preload("Chain.Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Scopes(tenant.Scope(companyID)).
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindRequestByEntity(ctx context.Context, companyID string, entityType EntityType, entityID string) (*ApprovalRequest, error) {
	var request ApprovalRequest
	err := r.db.WithContext(ctx).
		Preload("Chain.Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Scopes(tenant.Scope(companyID)).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPending returns requests whose current step an actor of the given role
// level could decide. Per-step assignee scoping is a future extension; the
// contract today is the role-level check.
func (r *repository) ListPending(ctx context.Context, companyID string, maxRoleLevel int) ([]ApprovalRequest, error) {
	var requests []ApprovalRequest
	err := r.db.WithContext(ctx).
		Preload("Chain.Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", RequestPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	actionable := requests[:0]
	for _, req := range requests {
		if req.Chain == nil || req.CurrentStep >= len(req.Chain.Steps) {
			continue
		}
		if req.Chain.Steps[req.CurrentStep].RequiredRoleLevel <= maxRoleLevel {
			actionable = append(actionable, req)
		}
	}
	return actionable, nil
}

// AdvanceRequest persists a step/status change guarded by the optimistic
// lock_version. Zero rows affected means another decision landed first.
// Raw SQL so the write lands on the caller's transaction: advancing the step
// and appending its history row must commit or roll back together.
func (r *repository) AdvanceRequest(ctx context.Context, request *ApprovalRequest, expectedVersion int) error {
	query := `
UPDATE approval_requests
SET status = $1, current_step = $2, lock_version = $3, resolved_at = $4, updated_at = now()
WHERE id = $5 AND lock_version = $6`

	exec, err := r.execer()
	if err != nil {
		return err
	}
	result, err := exec.ExecContext(ctx, query,
		request.Status, request.CurrentStep, expectedVersion+1, request.ResolvedAt,
		request.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return gorm.ErrRecordNotFound
	}
	request.LockVersion = expectedVersion + 1
	return nil
}

func (r *repository) AppendAction(ctx context.Context, action *ApprovalAction) error {
	query := `
INSERT INTO approval_actions (id, request_id, step, actor_id, actor_role_level, action, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	exec, err := r.execer()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query,
		action.ID, action.RequestID, action.Step, action.ActorID,
		action.ActorRoleLevel, action.Action, action.Notes, action.CreatedAt,
	)
	return err
}

func (r *repository) execer() (interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, error) {
	if r.tx != nil {
		return r.tx, nil
	}
	return r.db.DB()
}

// IsNotFound reports whether err is the repo's not-found signal.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
