package payrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-payroll/internal/approval"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/deduction"
	"go-payroll/internal/earning"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	payrunerrors "go-payroll/internal/payrun/errors"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/sequence"
	"go-payroll/internal/tax"
	"go-payroll/internal/timesheet"
)

// defaultJurisdiction is used for tax table lookups until per-company
// jurisdictions are configurable.
const defaultJurisdiction = "NG"

const defaultWorkers = 8

//go:generate mockgen -source=payrun_service.go -destination=mock/payrun_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePayRunRequest) (PayRunResponse, error)
	GetAll(ctx context.Context, companyID string, filter GetPayRunsFilterRequest) ([]PayRunResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PayRunResponse, error)
	GetItems(ctx context.Context, companyID, id string) ([]PayRunItemResponse, error)
	Calculate(ctx context.Context, companyID, actorID, id string) (PayRunResponse, error)
	SubmitForApproval(ctx context.Context, companyID, actorID, id string) (PayRunResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (PayRunResponse, error)
	Complete(ctx context.Context, companyID, actorID, id string) (PayRunResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (PayRunResponse, error)
	ExcludeItem(ctx context.Context, companyID, actorID, runID, itemID string, req ExcludeItemRequest) (PayRunItemResponse, error)
	ResetItem(ctx context.Context, companyID, actorID, runID, itemID string) (PayRunItemResponse, error)
	RecalculateItem(ctx context.Context, companyID, actorID, runID, itemID string) (PayRunItemResponse, error)
}

// Dependencies bundles the collaborators the orchestrator drives. Everything
// except Workers is required.
type Dependencies struct {
	Employees  employee.Repository
	Earnings   earning.Repository
	Deductions deduction.Repository
	Taxes      tax.Repository
	Hours      timesheet.HoursProvider
	Approvals  approval.Service
	Sequences  *sequence.Generator
	Outbox     kafka.OutboxRepository
	Audit      bootstrap.AuditLogger
	Workers    int
}

type service struct {
	db           *sql.DB
	repo         Repository
	deps         Dependencies
	taxEngine    *tax.Engine
	earningAgg   *earning.Aggregator
	deductionAgg *deduction.Aggregator
}

func NewService(db *sql.DB, repo Repository, deps Dependencies) Service {
	if deps.Workers <= 0 {
		deps.Workers = defaultWorkers
	}
	return &service{
		db:           db,
		repo:         repo,
		deps:         deps,
		taxEngine:    tax.NewEngine(),
		earningAgg:   earning.NewAggregator(),
		deductionAgg: deduction.NewAggregator(),
	}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreatePayRunRequest,
) (PayRunResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PayRunResponse{}, payrunerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayRunResponse{}, payrunerrors.ErrInvalidActorID
	}

	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		return PayRunResponse{}, err
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		return PayRunResponse{}, err
	}
	payDate, err := parseDate(req.PayDate)
	if err != nil {
		return PayRunResponse{}, err
	}
	if periodStart.After(periodEnd) {
		return PayRunResponse{}, payrunerrors.ErrInvalidDateRange
	}

	profiles, err := s.deps.Employees.FindActiveProfiles(ctx, companyID)
	if err != nil {
		return PayRunResponse{}, err
	}
	if len(profiles) == 0 {
		return PayRunResponse{}, payrunerrors.ErrNoActiveEmployees
	}

	// Allocated outside the transaction: an abandoned reference leaves a gap
	// in the sequence, never a duplicate.
	reference, err := s.deps.Sequences.Next(ctx, companyID, sequence.PrefixPayRun, payDate)
	if err != nil {
		return PayRunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return PayRunResponse{}, err
	}
	if overlap {
		return PayRunResponse{}, payrunerrors.ErrPeriodOverlap
	}

	run := &PayRun{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		Reference:   reference,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		PayDate:     payDate,
		Status:      StatusDraft,
		CreatedBy:   actorUUID,
	}

	if err := qtx.Create(ctx, run); err != nil {
		return PayRunResponse{}, err
	}

	items := make([]PayRunItem, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, PayRunItem{
			ID:           uuid.New(),
			PayRunID:     run.ID,
			CompanyID:    companyUUID,
			EmployeeID:   profile.EmployeeID,
			EmployeeName: profile.FullName,
			Status:       ItemPending,
		})
	}
	if err := qtx.CreateItems(ctx, items); err != nil {
		return PayRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayRunResponse{}, err
	}

	s.audit(ctx, actorID, "payrun.create", run.ID.String(), nil, map[string]any{
		"status":    string(StatusDraft),
		"reference": reference,
		"employees": len(items),
	})

	return mapToResponse(*run), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
	filter GetPayRunsFilterRequest,
) ([]PayRunResponse, error) {
	var status *Status
	if filter.Status != "" {
		v := Status(filter.Status)
		status = &v
	}

	runs, err := s.repo.FindAllByCompany(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(runs), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (PayRunResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	return mapToResponse(*run), nil
}

func (s *service) GetItems(
	ctx context.Context,
	companyID, id string,
) ([]PayRunItemResponse, error) {
	if _, err := s.findRun(ctx, s.repo, companyID, id); err != nil {
		return nil, err
	}
	items, err := s.repo.FindItems(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return mapItemsToResponse(items), nil
}


// Calculate runs one full calculation pass. Per-employee computation is pure
// and fans out over a bounded worker pool; the rollup below the barrier is
// the only writer of the run's totals.
func (s *service) Calculate(
	ctx context.Context,
	companyID, actorID, id string,
) (PayRunResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if !run.CanCalculate() {
		return PayRunResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	previous := run.Status
	run.Status = StatusCalculating
	if err := s.repo.UpdateStatus(ctx, run); err != nil {
		return PayRunResponse{}, err
	}
	s.audit(ctx, actorID, "payrun.calculate", run.ID.String(),
		map[string]any{"status": string(previous)},
		map[string]any{"status": string(StatusCalculating)},
	)

	items, err := s.repo.FindItems(ctx, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}

	results := make(chan PayRunItem, len(items))
	sem := make(chan struct{}, s.deps.Workers)
	var wg sync.WaitGroup

	for _, item := range items {
		if !item.Processable() {
			continue
		}
		wg.Add(1)
		go func(item PayRunItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- s.calculateItem(ctx, *run, item)
		}(item)
	}

	// Barrier: totals must never be rolled up while items are in flight.
	wg.Wait()
	close(results)

	summary := CalculationSummary{}
	for item := range results {
		if err := s.repo.UpdateItem(ctx, &item); err != nil {
			return PayRunResponse{}, err
		}
	}

	// A cancel may have landed mid-pass. Item rows stay as written; the run
	// itself is no longer ours to advance.
	current, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		contextutil.GetLogger(ctx, zap.L()).Warn("pay run vanished after calculation pass",
			zap.String("pay_run_id", id))
		return PayRunResponse{}, err
	}
	if current.Status != StatusCalculating {
		return mapToResponse(*current), nil
	}

	all, err := s.repo.FindItems(ctx, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	for _, item := range all {
		switch item.Status {
		case ItemCalculated:
			summary.Calculated++
		case ItemError:
			summary.Errored++
		case ItemExcluded:
			summary.Excluded++
		}
	}

	current.UpdateTotals(all)
	if err := s.repo.UpdateTotals(ctx, current); err != nil {
		return PayRunResponse{}, err
	}

	current.Status = StatusPendingReview
	if err := s.repo.UpdateStatus(ctx, current); err != nil {
		return PayRunResponse{}, err
	}
	s.audit(ctx, actorID, "payrun.calculated", current.ID.String(),
		map[string]any{"status": string(StatusCalculating)},
		map[string]any{
			"status":     string(StatusPendingReview),
			"calculated": summary.Calculated,
			"errored":    summary.Errored,
			"excluded":   summary.Excluded,
		},
	)

	s.enqueueEvent(ctx, current, events.PayRunCalculatedTopic, "payrun.calculated", events.PayRunCalculatedEvent{
		EventType:       "payrun.calculated",
		PayRunID:        current.ID.String(),
		CompanyID:       companyID,
		Reference:       current.Reference,
		CalculatedCount: summary.Calculated,
		ErroredCount:    summary.Errored,
		ExcludedCount:   summary.Excluded,
		OccurredAt:      time.Now().UTC(),
	})

	resp := mapToResponse(*current)
	resp.Summary = &summary
	return resp, nil
}

// calculateItem computes one employee's figures. Failures are recorded on the
// item and never abort the batch.
func (s *service) calculateItem(ctx context.Context, run PayRun, item PayRunItem) PayRunItem {
	companyID := run.CompanyID.String()
	employeeID := item.EmployeeID.String()

	computed, err := s.computeFigures(ctx, run, item)
	if err != nil {
		msg := err.Error()
		item.Status = ItemError
		item.ErrorMessage = &msg
		contextutil.GetLogger(ctx, zap.L()).Warn("pay run item calculation failed",
			zap.String("pay_run_id", run.ID.String()),
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return item
	}
	return computed
}

func (s *service) computeFigures(ctx context.Context, run PayRun, item PayRunItem) (PayRunItem, error) {
	companyID := run.CompanyID.String()
	employeeID := item.EmployeeID.String()

	profile, err := s.deps.Employees.FindByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return item, err
	}

	hours, err := s.deps.Hours.HoursForPeriod(ctx, companyID, employeeID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return item, err
	}

	earnings, err := s.deps.Earnings.FindForEmployee(ctx, companyID, employeeID, run.PeriodEnd)
	if err != nil {
		return item, err
	}
	earningsBd := s.earningAgg.Aggregate(*profile, earnings, hours)

	table, err := s.deps.Taxes.FindActiveTable(ctx, companyID, run.PeriodEnd.Year(), defaultJurisdiction)
	if err != nil {
		return item, err
	}

	// The engine works on annual figures; period tax is the annual tax spread
	// back over the pay frequency.
	periods := decimal.NewFromInt(profile.PayFrequency.PeriodsPerYear())
	taxResult, err := s.taxEngine.Calculate(table, tax.Input{
		GrossIncome:    earningsBd.TaxableBase.Mul(periods),
		AnnualRentPaid: profile.AnnualRentPaid,
		TaxExempt:      profile.TaxExempt(),
	})
	if err != nil {
		return item, err
	}
	periodTax := taxResult.TotalTax.Div(periods).Round(2)

	deductions, err := s.deps.Deductions.FindForEmployee(ctx, companyID, employeeID, run.PeriodEnd)
	if err != nil {
		return item, err
	}
	deductionsBd := s.deductionAgg.Aggregate(*profile, deductions, deduction.Bases{
		Gross:       earningsBd.GrossEarnings,
		Basic:       earningsBd.BasicPay,
		Taxable:     earningsBd.TaxableBase,
		Pensionable: earningsBd.PensionableBase,
		IncomeTax:   periodTax,
	})

	earningsJSON, err := json.Marshal(earningsBd)
	if err != nil {
		return item, err
	}
	deductionsJSON, err := json.Marshal(deductionsBd)
	if err != nil {
		return item, err
	}
	taxJSON, err := json.Marshal(taxResult)
	if err != nil {
		return item, err
	}

	item.Status = ItemCalculated
	item.BasicPay = earningsBd.BasicPay
	item.GrossEarnings = earningsBd.GrossEarnings
	item.TaxableIncome = earningsBd.TaxableBase
	item.IncomeTax = periodTax
	item.TotalDeductions = deductionsBd.TotalDeductions
	item.NetPay = earningsBd.GrossEarnings.Sub(deductionsBd.TotalDeductions).Sub(periodTax)
	item.EarningsBreakdown = earningsJSON
	item.DeductionsBreakdown = deductionsJSON
	item.TaxCalculation = taxJSON
	item.ErrorMessage = nil

	return item, nil
}

func (s *service) SubmitForApproval(
	ctx context.Context,
	companyID, actorID, id string,
) (PayRunResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if !run.CanSubmitForApproval() {
		return PayRunResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	result, err := s.deps.Approvals.Submit(ctx, companyID, approval.EntityPayRun, id, run.TotalNet, actorID)
	if err != nil {
		return PayRunResponse{}, err
	}

	previous := run.Status
	if result.RequiresApproval {
		run.Status = StatusPendingApproval
	} else {
		// No chain gates this amount: auto-approved.
		s.markApproved(run, actorID)
	}

	if err := s.repo.UpdateStatus(ctx, run); err != nil {
		return PayRunResponse{}, err
	}
	s.audit(ctx, actorID, "payrun.submit", run.ID.String(),
		map[string]any{"status": string(previous)},
		map[string]any{"status": string(run.Status), "requires_approval": result.RequiresApproval},
	)

	if run.Status == StatusApproved {
		s.enqueueApprovedEvent(ctx, run, actorID)
	}

	return mapToResponse(*run), nil
}

func (s *service) Approve(
	ctx context.Context,
	companyID, actorID, id string,
) (PayRunResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if !run.CanApprove() {
		return PayRunResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	request, err := s.deps.Approvals.GetByEntity(ctx, companyID, approval.EntityPayRun, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if request.Status != string(approval.RequestApproved) {
		return PayRunResponse{}, payrunerrors.ErrApprovalPending
	}

	previous := run.Status
	s.markApproved(run, actorID)
	if err := s.repo.UpdateStatus(ctx, run); err != nil {
		return PayRunResponse{}, err
	}
	s.audit(ctx, actorID, "payrun.approve", run.ID.String(),
		map[string]any{"status": string(previous)},
		map[string]any{"status": string(StatusApproved)},
	)
	s.enqueueApprovedEvent(ctx, run, actorID)

	return mapToResponse(*run), nil
}

// Complete hands the run to the payslip pipeline: the run moves to PROCESSING
// and a payslip-requested event goes through the outbox in the same
// transaction. The consumer marks the run COMPLETED once payslips exist.
func (s *service) Complete(
	ctx context.Context,
	companyID, actorID, id string,
) (PayRunResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if !run.CanComplete() {
		return PayRunResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayRunResponse{}, err
	}
	defer tx.Rollback()

	previous := run.Status
	run.Status = StatusProcessing
	if err := s.repo.WithTx(tx).UpdateStatus(ctx, run); err != nil {
		return PayRunResponse{}, err
	}

	// Amortizing balances move forward only now. Items carry their advances
	// from the last calculation pass; replayed or cancelled runs never apply
	// them.
	items, err := s.repo.WithTx(tx).FindItems(ctx, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if err := s.applyTargetAdvances(ctx, tx, companyID, items); err != nil {
		return PayRunResponse{}, err
	}

	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"pay_run", run.ID.String(),
		"payslip.requested", events.PayslipRequestedTopic,
		events.PayslipRequestedEvent{
			EventType:   "payslip.requested",
			PayRunID:    run.ID.String(),
			CompanyID:   companyID,
			RequestedBy: actorID,
			OccurredAt:  time.Now().UTC(),
		},
	)
	if err != nil {
		return PayRunResponse{}, err
	}
	if err := s.deps.Outbox.WithTx(tx).Create(ctx, event); err != nil {
		return PayRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayRunResponse{}, err
	}

	s.audit(ctx, actorID, "payrun.complete", run.ID.String(),
		map[string]any{"status": string(previous)},
		map[string]any{"status": string(StatusProcessing)},
	)

	return mapToResponse(*run), nil
}

func (s *service) Cancel(
	ctx context.Context,
	companyID, actorID, id string,
) (PayRunResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, id)
	if err != nil {
		return PayRunResponse{}, err
	}
	if !run.CanBeCancelled() {
		return PayRunResponse{}, payrunerrors.ErrCannotCancel
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	previous := run.Status
	run.Status = StatusCancelled
	if err := qtx.UpdateStatus(ctx, run); err != nil {
		return PayRunResponse{}, err
	}
	// Soft delete keeps the run and all item rows for the audit trail while
	// removing it from further processing.
	if err := qtx.SoftDelete(ctx, companyID, id); err != nil {
		return PayRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayRunResponse{}, err
	}

	s.audit(ctx, actorID, "payrun.cancel", run.ID.String(),
		map[string]any{"status": string(previous)},
		map[string]any{"status": string(StatusCancelled)},
	)

	return mapToResponse(*run), nil
}

func (s *service) ExcludeItem(
	ctx context.Context,
	companyID, actorID, runID, itemID string,
	req ExcludeItemRequest,
) (PayRunItemResponse, error) {
	if req.Reason == "" {
		return PayRunItemResponse{}, payrunerrors.ErrExclusionReasonRequired
	}

	run, err := s.findRun(ctx, s.repo, companyID, runID)
	if err != nil {
		return PayRunItemResponse{}, err
	}
	if !itemsMutable(run.Status) {
		return PayRunItemResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	item, err := s.findItem(ctx, companyID, runID, itemID)
	if err != nil {
		return PayRunItemResponse{}, err
	}
	if item.Status == ItemExcluded {
		return PayRunItemResponse{}, payrunerrors.ErrItemAlreadyExcluded
	}

	item.Status = ItemExcluded
	item.ExcludedReason = &req.Reason
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return PayRunItemResponse{}, err
	}

	if err := s.refreshTotals(ctx, run); err != nil {
		return PayRunItemResponse{}, err
	}

	s.audit(ctx, actorID, "payrun.item.exclude", item.ID.String(), nil, map[string]any{
		"pay_run_id": runID,
		"reason":     req.Reason,
	})
	s.enqueueEvent(ctx, run, events.PayRunItemExcludedTopic, "payrun.item.excluded", events.PayRunItemExcludedEvent{
		EventType:  "payrun.item.excluded",
		PayRunID:   runID,
		ItemID:     item.ID.String(),
		EmployeeID: item.EmployeeID.String(),
		CompanyID:  companyID,
		Reason:     req.Reason,
		OccurredAt: time.Now().UTC(),
	})

	return mapItemToResponse(*item), nil
}

func (s *service) ResetItem(
	ctx context.Context,
	companyID, actorID, runID, itemID string,
) (PayRunItemResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, runID)
	if err != nil {
		return PayRunItemResponse{}, err
	}
	if !itemsMutable(run.Status) {
		return PayRunItemResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	item, err := s.findItem(ctx, companyID, runID, itemID)
	if err != nil {
		return PayRunItemResponse{}, err
	}

	item.Reset()
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return PayRunItemResponse{}, err
	}

	if err := s.refreshTotals(ctx, run); err != nil {
		return PayRunItemResponse{}, err
	}

	s.audit(ctx, actorID, "payrun.item.reset", item.ID.String(), nil, map[string]any{
		"pay_run_id": runID,
	})

	return mapItemToResponse(*item), nil
}

// RecalculateItem reruns one PENDING or ERROR item without touching the rest
// of the run.
func (s *service) RecalculateItem(
	ctx context.Context,
	companyID, actorID, runID, itemID string,
) (PayRunItemResponse, error) {
	run, err := s.findRun(ctx, s.repo, companyID, runID)
	if err != nil {
		return PayRunItemResponse{}, err
	}
	if !itemsMutable(run.Status) {
		return PayRunItemResponse{}, payrunerrors.ErrInvalidStatusTransition
	}

	item, err := s.findItem(ctx, companyID, runID, itemID)
	if err != nil {
		return PayRunItemResponse{}, err
	}
	if !item.Processable() {
		return PayRunItemResponse{}, payrunerrors.ErrItemNotProcessable
	}

	computed := s.calculateItem(ctx, *run, *item)
	if err := s.repo.UpdateItem(ctx, &computed); err != nil {
		return PayRunItemResponse{}, err
	}

	if err := s.refreshTotals(ctx, run); err != nil {
		return PayRunItemResponse{}, err
	}

	s.audit(ctx, actorID, "payrun.item.recalculate", computed.ID.String(), nil, map[string]any{
		"pay_run_id": runID,
		"status":     string(computed.Status),
	})

	return mapItemToResponse(computed), nil
}

func (s *service) markApproved(run *PayRun, actorID string) {
	now := time.Now().UTC()
	run.Status = StatusApproved
	run.ApprovedAt = &now
	if actorUUID, err := uuid.Parse(actorID); err == nil {
		run.ApprovedBy = &actorUUID
	}
}

// applyTargetAdvances replays the target advances recorded on each calculated
// item's deductions breakdown against the deduction ledger.
func (s *service) applyTargetAdvances(ctx context.Context, tx *sql.Tx, companyID string, items []PayRunItem) error {
	repo := s.deps.Deductions.WithTx(tx)
	for _, item := range items {
		if item.Status != ItemCalculated || len(item.DeductionsBreakdown) == 0 {
			continue
		}
		var bd deduction.Breakdown
		if err := json.Unmarshal(item.DeductionsBreakdown, &bd); err != nil {
			return err
		}
		for _, adv := range bd.TargetAdvances {
			if err := repo.AdvanceTarget(ctx, companyID, adv.DeductionID, adv.Applied, adv.Deactivate); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) refreshTotals(ctx context.Context, run *PayRun) error {
	items, err := s.repo.FindItems(ctx, run.CompanyID.String(), run.ID.String())
	if err != nil {
		return err
	}
	run.UpdateTotals(items)
	return s.repo.UpdateTotals(ctx, run)
}

func (s *service) findRun(ctx context.Context, repo Repository, companyID, id string) (*PayRun, error) {
	run, err := repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, payrunerrors.ErrPayRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *service) findItem(ctx context.Context, companyID, runID, itemID string) (*PayRunItem, error) {
	item, err := s.repo.FindItem(ctx, companyID, runID, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, payrunerrors.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *service) audit(ctx context.Context, actorID, action, entityID string, oldValues, newValues map[string]any) {
	if s.deps.Audit == nil {
		return
	}
	s.deps.Audit.Log(ctx, bootstrap.AuditLog{
		Action:    action,
		Actor:     actorID,
		Entity:    "pay_run",
		EntityID:  entityID,
		OldValues: oldValues,
		NewValues: newValues,
	})
}

// enqueueEvent writes a notification through the outbox outside any caller
// transaction. Enqueue failures are logged, not surfaced: the state change
// already landed.
func (s *service) enqueueEvent(ctx context.Context, run *PayRun, topic, eventType string, payload any) {
	if s.deps.Outbox == nil {
		return
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"pay_run", run.ID.String(),
		eventType, topic, payload,
	)
	if err == nil {
		err = s.deps.Outbox.Create(ctx, event)
	}
	if err != nil {
		contextutil.GetLogger(ctx, zap.L()).Error("failed to enqueue outbox event",
			zap.String("topic", topic),
			zap.String("pay_run_id", run.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) enqueueApprovedEvent(ctx context.Context, run *PayRun, actorID string) {
	s.enqueueEvent(ctx, run, events.PayRunApprovedTopic, "payrun.approved", events.PayRunApprovedEvent{
		EventType:  "payrun.approved",
		PayRunID:   run.ID.String(),
		CompanyID:  run.CompanyID.String(),
		Reference:  run.Reference,
		ApprovedBy: actorID,
		OccurredAt: time.Now().UTC(),
	})
}

// itemsMutable: item-level edits only make sense while the run's figures are
// still in review.
func itemsMutable(status Status) bool {
	switch status {
	case StatusDraft, StatusCalculating, StatusPendingReview:
		return true
	default:
		return false
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, payrunerrors.ErrInvalidDateFormat
	}
	return t, nil
}
