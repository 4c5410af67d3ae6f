package approval

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	approvalerrors "go-payroll/internal/approval/errors"
)

// SubmitResult tells the caller whether an approval chain gates the entity.
// When no chain matches, the entity is auto-approved and no request exists.
type SubmitResult struct {
	RequiresApproval bool
	Request          *ApprovalRequest
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, companyID string, entityType EntityType, entityID string, amount decimal.Decimal, requestedBy string) (SubmitResult, error)
	Decide(ctx context.Context, companyID, requestID, actorID string, actorRoleLevel int, req DecideRequest) (RequestResponse, error)
	GetByEntity(ctx context.Context, companyID string, entityType EntityType, entityID string) (RequestResponse, error)
	ListPending(ctx context.Context, companyID string, actorRoleLevel int) ([]RequestResponse, error)
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Submit(
	ctx context.Context,
	companyID string,
	entityType EntityType,
	entityID string,
	amount decimal.Decimal,
	requestedBy string,
) (SubmitResult, error) {
	chain, err := s.repo.FindMatchingChain(ctx, companyID, entityType, amount)
	if err != nil {
		if IsNotFound(err) {
			return SubmitResult{RequiresApproval: false}, nil
		}
		return SubmitResult{}, err
	}

	if len(chain.Steps) == 0 {
		return SubmitResult{}, approvalerrors.ErrChainHasNoSteps
	}

	entityUUID, err := uuid.Parse(entityID)
	if err != nil {
		return SubmitResult{}, approvalerrors.ErrRequestNotFound
	}
	requesterUUID, err := uuid.Parse(requestedBy)
	if err != nil {
		return SubmitResult{}, approvalerrors.ErrRequestNotFound
	}

	request := &ApprovalRequest{
		ID:          uuid.New(),
		CompanyID:   chain.CompanyID,
		ChainID:     chain.ID,
		Chain:       chain,
		EntityType:  entityType,
		EntityID:    entityUUID,
		Amount:      amount,
		Status:      RequestPending,
		CurrentStep: 0,
		RequestedBy: requesterUUID,
	}

	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{RequiresApproval: true, Request: request}, nil
}

func (s *service) Decide(
	ctx context.Context,
	companyID, requestID, actorID string,
	actorRoleLevel int,
	req DecideRequest,
) (RequestResponse, error) {
	action := Action(req.Action)
	if action != ActionApprove && action != ActionReject {
		return RequestResponse{}, approvalerrors.ErrInvalidAction
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RequestResponse{}, approvalerrors.ErrRequestNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	request, err := qtx.FindRequestByID(ctx, companyID, requestID)
	if err != nil {
		if IsNotFound(err) {
			return RequestResponse{}, approvalerrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}

	if request.Status != RequestPending {
		return RequestResponse{}, approvalerrors.ErrRequestAlreadyResolved
	}
	if request.Chain == nil || request.CurrentStep >= len(request.Chain.Steps) {
		return RequestResponse{}, approvalerrors.ErrChainHasNoSteps
	}

	step := request.Chain.Steps[request.CurrentStep]
	if actorRoleLevel < step.RequiredRoleLevel {
		return RequestResponse{}, approvalerrors.ErrInsufficientRoleLevel
	}

	historyEntry := &ApprovalAction{
		ID:             uuid.New(),
		RequestID:      request.ID,
		Step:           request.CurrentStep,
		ActorID:        actorUUID,
		ActorRoleLevel: actorRoleLevel,
		Action:         action,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
	}

	expectedVersion := request.LockVersion
	now := time.Now().UTC()

	switch action {
	case ActionApprove:
		request.CurrentStep++
		if request.CurrentStep >= len(request.Chain.Steps) {
			request.Status = RequestApproved
			request.ResolvedAt = &now
		}
	case ActionReject:
		// Rejection at any step is terminal. Earlier approvals stay in the
		// history untouched.
		request.Status = RequestRejected
		request.ResolvedAt = &now
	}

	if err := qtx.AdvanceRequest(ctx, request, expectedVersion); err != nil {
		if IsNotFound(err) {
			return RequestResponse{}, approvalerrors.ErrApprovalConflict
		}
		return RequestResponse{}, err
	}

	if err := qtx.AppendAction(ctx, historyEntry); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RequestResponse{}, err
	}

	request.History = append(request.History, *historyEntry)
	return mapToResponse(*request), nil
}

func (s *service) GetByEntity(
	ctx context.Context,
	companyID string,
	entityType EntityType,
	entityID string,
) (RequestResponse, error) {
	request, err := s.repo.FindRequestByEntity(ctx, companyID, entityType, entityID)
	if err != nil {
		if IsNotFound(err) {
			return RequestResponse{}, approvalerrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	return mapToResponse(*request), nil
}

func (s *service) ListPending(
	ctx context.Context,
	companyID string,
	actorRoleLevel int,
) ([]RequestResponse, error) {
	requests, err := s.repo.ListPending(ctx, companyID, actorRoleLevel)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}
