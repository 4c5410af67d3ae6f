package approval

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntityType names the kind of financial record a chain gates. Kept open so
// other batch entities (fund requests, wage advances) reuse the workflow.
type EntityType string

const (
	EntityPayRun      EntityType = "PAY_RUN"
	EntityFundRequest EntityType = "FUND_REQUEST"
	EntityWageAdvance EntityType = "WAGE_ADVANCE"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// ApprovalChain is a tenant-scoped sign-off policy. A chain matches an entity
// when the entity type matches and the amount falls inside
// [minimum_amount, maximum_amount]; nil maximum means unbounded. When several
// chains match, the highest priority wins.
type ApprovalChain struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name          string           `gorm:"type:varchar(120);not null"`
	EntityType    EntityType       `gorm:"type:varchar(30);not null;index"`
	MinimumAmount decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	MaximumAmount *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Priority      int              `gorm:"not null;default:0"`
	IsActive      bool             `gorm:"not null;default:true"`

	Steps []ApprovalStep `gorm:"foreignKey:ChainID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// ApprovalStep is one ordered sign-off in a chain. RequiredRoleLevel is the
// minimum role level an actor needs to decide this step.
type ApprovalStep struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChainID           uuid.UUID `gorm:"type:uuid;not null;index"`
	StepOrder         int       `gorm:"not null"`
	Name              string    `gorm:"type:varchar(120);not null"`
	RequiredRoleLevel int       `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApprovalRequest is one instance of a chain gating one entity. CurrentStep
// indexes into the chain's ordered steps; LockVersion serializes concurrent
// decisions — a decision made against a stale step must fail, never
// overwrite history.
type ApprovalRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChainID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Chain       *ApprovalChain  `gorm:"foreignKey:ChainID"`
	EntityType  EntityType      `gorm:"type:varchar(30);not null;index:idx_approval_entity"`
	EntityID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_approval_entity"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status      RequestStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CurrentStep int             `gorm:"not null;default:0"`
	LockVersion int             `gorm:"not null;default:0"`
	RequestedBy uuid.UUID       `gorm:"type:uuid;not null"`
	ResolvedAt  *time.Time

	History []ApprovalAction `gorm:"foreignKey:RequestID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApprovalAction is one immutable history entry. Rows are only ever appended;
// rejection does not roll back earlier entries.
type ApprovalAction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Step           int       `gorm:"not null"`
	ActorID        uuid.UUID `gorm:"type:uuid;not null"`
	ActorRoleLevel int       `gorm:"not null"`
	Action         Action    `gorm:"type:varchar(20);not null"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
}

// Matches reports whether this chain applies to the given entity and amount.
func (c ApprovalChain) Matches(entityType EntityType, amount decimal.Decimal) bool {
	if !c.IsActive || c.EntityType != entityType {
		return false
	}
	if amount.LessThan(c.MinimumAmount) {
		return false
	}
	return c.MaximumAmount == nil || amount.LessThanOrEqual(*c.MaximumAmount)
}
