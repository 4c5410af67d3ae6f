package payrun_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"go-payroll/internal/approval"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/deduction"
	"go-payroll/internal/earning"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrun"
	payrunerrors "go-payroll/internal/payrun/errors"
	"go-payroll/internal/shared/sequence"
	"go-payroll/internal/tax"
	taxerrors "go-payroll/internal/tax/errors"
	"go-payroll/internal/timesheet"
)

type fakePayRunRepository struct {
	mu    sync.Mutex
	run   *payrun.PayRun
	items map[string]payrun.PayRunItem

	statusLog  []payrun.Status
	totalsLog  []payrun.PayRun
	deleted    bool
	overlap    bool
	createdRun *payrun.PayRun

	afterUpdateItem func(f *fakePayRunRepository)
}

func newFakePayRunRepository(run *payrun.PayRun, items []payrun.PayRunItem) *fakePayRunRepository {
	f := &fakePayRunRepository{run: run, items: map[string]payrun.PayRunItem{}}
	for _, item := range items {
		f.items[item.ID.String()] = item
	}
	return f
}

func (f *fakePayRunRepository) WithTx(tx *sql.Tx) payrun.Repository { return f }

func (f *fakePayRunRepository) Create(ctx context.Context, run *payrun.PayRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdRun = run
	f.run = run
	return nil
}

func (f *fakePayRunRepository) CreateItems(ctx context.Context, items []payrun.PayRunItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.items[item.ID.String()] = item
	}
	return nil
}

func (f *fakePayRunRepository) FindAllByCompany(ctx context.Context, companyID string, status *payrun.Status) ([]payrun.PayRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.run == nil {
		return nil, nil
	}
	return []payrun.PayRun{*f.run}, nil
}

func (f *fakePayRunRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrun.PayRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.run == nil || f.run.ID.String() != id || f.deleted {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.run
	return &copied, nil
}

func (f *fakePayRunRepository) FindItems(ctx context.Context, companyID, runID string) ([]payrun.PayRunItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]payrun.PayRunItem, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakePayRunRepository) FindItem(ctx context.Context, companyID, runID, itemID string) (*payrun.PayRunItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (f *fakePayRunRepository) UpdateStatus(ctx context.Context, run *payrun.PayRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.run.Status = run.Status
	f.run.ApprovedBy = run.ApprovedBy
	f.run.ApprovedAt = run.ApprovedAt
	f.statusLog = append(f.statusLog, run.Status)
	return nil
}

func (f *fakePayRunRepository) UpdateTotals(ctx context.Context, run *payrun.PayRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.run.TotalGross = run.TotalGross
	f.run.TotalDeductions = run.TotalDeductions
	f.run.TotalTax = run.TotalTax
	f.run.TotalNet = run.TotalNet
	f.run.EmployerCost = run.EmployerCost
	f.run.EmployeeCount = run.EmployeeCount
	f.totalsLog = append(f.totalsLog, *run)
	return nil
}

func (f *fakePayRunRepository) UpdateItem(ctx context.Context, item *payrun.PayRunItem) error {
	f.mu.Lock()
	f.items[item.ID.String()] = *item
	hook := f.afterUpdateItem
	f.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

func (f *fakePayRunRepository) HasOverlappingPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (bool, error) {
	return f.overlap, nil
}

func (f *fakePayRunRepository) SoftDelete(ctx context.Context, companyID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = true
	return nil
}

type fakeEmployeeRepository struct {
	profiles map[string]employee.PayProfile
}

func (f *fakeEmployeeRepository) FindActiveProfiles(ctx context.Context, companyID string) ([]employee.PayProfile, error) {
	out := make([]employee.PayProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeEmployeeRepository) FindByEmployee(ctx context.Context, companyID, employeeID string) (*employee.PayProfile, error) {
	p, ok := f.profiles[employeeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

type fakeEarningRepository struct{}

func (f *fakeEarningRepository) FindForEmployee(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]earning.EmployeeEarning, error) {
	return nil, nil
}

type fakeDeductionRepository struct {
	mu       sync.Mutex
	deds     []deduction.EmployeeDeduction
	advances []deduction.TargetAdvance
}

func (f *fakeDeductionRepository) WithTx(tx *sql.Tx) deduction.Repository { return f }

func (f *fakeDeductionRepository) FindForEmployee(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]deduction.EmployeeDeduction, error) {
	return f.deds, nil
}

func (f *fakeDeductionRepository) AdvanceTarget(ctx context.Context, companyID, deductionID string, applied decimal.Decimal, deactivate bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advances = append(f.advances, deduction.TargetAdvance{
		DeductionID: deductionID,
		Applied:     applied,
		Deactivate:  deactivate,
	})
	return nil
}

type fakeTaxRepository struct {
	table *tax.TaxTable
}

func (f *fakeTaxRepository) FindActiveTable(ctx context.Context, companyID string, year int, jurisdiction string) (*tax.TaxTable, error) {
	if f.table == nil {
		return nil, taxerrors.ErrTaxTableNotFound
	}
	return f.table, nil
}

type fakeHoursProvider struct{}

func (f *fakeHoursProvider) HoursForPeriod(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) (timesheet.Hours, error) {
	return timesheet.Hours{}, nil
}

type fakeApprovalService struct {
	submitFn      func(ctx context.Context, companyID string, entityType approval.EntityType, entityID string, amount decimal.Decimal, requestedBy string) (approval.SubmitResult, error)
	getByEntityFn func(ctx context.Context, companyID string, entityType approval.EntityType, entityID string) (approval.RequestResponse, error)
}

func (f *fakeApprovalService) Submit(ctx context.Context, companyID string, entityType approval.EntityType, entityID string, amount decimal.Decimal, requestedBy string) (approval.SubmitResult, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, companyID, entityType, entityID, amount, requestedBy)
	}
	return approval.SubmitResult{}, nil
}

func (f *fakeApprovalService) Decide(ctx context.Context, companyID, requestID, actorID string, actorRoleLevel int, req approval.DecideRequest) (approval.RequestResponse, error) {
	return approval.RequestResponse{}, nil
}

func (f *fakeApprovalService) GetByEntity(ctx context.Context, companyID string, entityType approval.EntityType, entityID string) (approval.RequestResponse, error) {
	if f.getByEntityFn != nil {
		return f.getByEntityFn(ctx, companyID, entityType, entityID)
	}
	return approval.RequestResponse{}, gorm.ErrRecordNotFound
}

func (f *fakeApprovalService) ListPending(ctx context.Context, companyID string, actorRoleLevel int) ([]approval.RequestResponse, error) {
	return nil, nil
}

type fakeSequenceRepository struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeSequenceRepository) NextValue(ctx context.Context, companyID, prefix string, date time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	mu     sync.Mutex
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error   { return nil }
func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id, r string) error { return nil }

func (f *fakeOutboxRepository) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	topics := make([]string, len(f.events))
	for i, e := range f.events {
		topics[i] = e.Topic
	}
	return topics
}

func salariedProfile(companyID uuid.UUID, monthly int64) employee.PayProfile {
	return employee.PayProfile{
		ID:           uuid.New(),
		CompanyID:    companyID,
		EmployeeID:   uuid.New(),
		FullName:     "Ngozi Okafor",
		PayType:      employee.PayTypeSalaried,
		PayAmount:    decimal.NewFromInt(monthly),
		PayFrequency: employee.FrequencyMonthly,
		TaxHandling:  employee.TaxHandlingStandard,
		IsActive:     true,
	}
}

func loanDeduction(companyID, employeeID uuid.UUID, monthly, target int64) deduction.EmployeeDeduction {
	typeID := uuid.New()
	amount := decimal.NewFromInt(monthly)
	total := decimal.NewFromInt(target)
	return deduction.EmployeeDeduction{
		ID:              uuid.New(),
		CompanyID:       companyID,
		EmployeeID:      employeeID,
		DeductionTypeID: typeID,
		DeductionType: &deduction.DeductionType{
			ID:        typeID,
			CompanyID: companyID,
			Name:      "Staff loan",
			Category:  deduction.CategoryLoan,
			CalcType:  deduction.CalcFixed,
			CalcBase:  deduction.BaseGross,
			IsActive:  true,
		},
		Amount:        &amount,
		TotalTarget:   &total,
		TotalDeducted: decimal.Zero,
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

// twoBandTable: 7% up to 300,000/yr, 24% above. No reliefs, so the arithmetic
// in assertions stays readable.
func twoBandTable() *tax.TaxTable {
	max1 := decimal.NewFromInt(300_000)
	tableID := uuid.New()
	return &tax.TaxTable{
		ID:           tableID,
		Year:         2025,
		Jurisdiction: "NG",
		Law:          tax.LawPITA2011,
		IsActive:     true,
		Bands: []tax.TaxBand{
			{TaxTableID: tableID, BandOrder: 1, Min: decimal.Zero, Max: &max1, Rate: decimal.NewFromInt(7)},
			{TaxTableID: tableID, BandOrder: 2, Min: max1, Rate: decimal.NewFromInt(24)},
		},
	}
}

type serviceFixture struct {
	svc        payrun.Service
	repo       *fakePayRunRepository
	employees  *fakeEmployeeRepository
	taxes      *fakeTaxRepository
	deductions *fakeDeductionRepository
	outbox     *fakeOutboxRepository
	mock       sqlmock.Sqlmock
	db         *sql.DB
}

func newServiceFixture(t *testing.T, run *payrun.PayRun, items []payrun.PayRunItem) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newFakePayRunRepository(run, items)
	employees := &fakeEmployeeRepository{profiles: map[string]employee.PayProfile{}}
	taxes := &fakeTaxRepository{table: twoBandTable()}
	deductions := &fakeDeductionRepository{}
	outbox := &fakeOutboxRepository{}

	svc := payrun.NewService(db, repo, payrun.Dependencies{
		Employees:  employees,
		Earnings:   &fakeEarningRepository{},
		Deductions: deductions,
		Taxes:      taxes,
		Hours:      &fakeHoursProvider{},
		Approvals:  &fakeApprovalService{},
		Sequences:  sequence.NewGenerator(&fakeSequenceRepository{}),
		Outbox:     outbox,
		Audit:      bootstrap.NewStdoutAuditLogger(),
		Workers:    4,
	})

	return &serviceFixture{
		svc:        svc,
		repo:       repo,
		employees:  employees,
		taxes:      taxes,
		deductions: deductions,
		outbox:     outbox,
		mock:       mock,
		db:         db,
	}
}

func draftRun(companyID uuid.UUID) *payrun.PayRun {
	return &payrun.PayRun{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Reference:   "PAY-20250131-0001",
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		PayDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:      payrun.StatusDraft,
		CreatedBy:   uuid.New(),
	}
}

func pendingItem(run *payrun.PayRun, employeeID uuid.UUID, name string) payrun.PayRunItem {
	return payrun.PayRunItem{
		ID:           uuid.New(),
		PayRunID:     run.ID,
		CompanyID:    run.CompanyID,
		EmployeeID:   employeeID,
		EmployeeName: name,
		Status:       payrun.ItemPending,
	}
}

func TestPayRunService_Create_AllocatesReferenceAndItems(t *testing.T) {
	companyID := uuid.New()
	f := newServiceFixture(t, nil, nil)

	p1 := salariedProfile(companyID, 400_000)
	p2 := salariedProfile(companyID, 250_000)
	f.employees.profiles[p1.EmployeeID.String()] = p1
	f.employees.profiles[p2.EmployeeID.String()] = p2

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Create(context.Background(), companyID.String(), uuid.New().String(), payrun.CreatePayRunRequest{
		PeriodStart: "2025-02-01",
		PeriodEnd:   "2025-02-28",
		PayDate:     "2025-02-28",
	})

	assert.NoError(t, err)
	assert.Equal(t, "PAY-20250228-0001", resp.Reference)
	assert.Equal(t, string(payrun.StatusDraft), resp.Status)
	assert.Len(t, f.repo.items, 2)
	for _, item := range f.repo.items {
		assert.Equal(t, payrun.ItemPending, item.Status)
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayRunService_Create_OverlapRejected(t *testing.T) {
	companyID := uuid.New()
	f := newServiceFixture(t, nil, nil)
	f.repo.overlap = true

	p := salariedProfile(companyID, 400_000)
	f.employees.profiles[p.EmployeeID.String()] = p

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Create(context.Background(), companyID.String(), uuid.New().String(), payrun.CreatePayRunRequest{
		PeriodStart: "2025-02-01",
		PeriodEnd:   "2025-02-28",
		PayDate:     "2025-02-28",
	})

	assert.ErrorIs(t, err, payrunerrors.ErrPeriodOverlap)
	assert.Nil(t, f.repo.createdRun)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayRunService_Calculate_SummaryAndTotals(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)

	// Employee A calculates cleanly; employee B has no pay profile, so their
	// item lands in ERROR without touching the batch.
	profileA := salariedProfile(companyID, 500_000)
	missingEmployee := uuid.New()

	items := []payrun.PayRunItem{
		pendingItem(run, profileA.EmployeeID, profileA.FullName),
		pendingItem(run, missingEmployee, "Tunde Bakare"),
	}
	f := newServiceFixture(t, run, items)
	f.employees.profiles[profileA.EmployeeID.String()] = profileA

	resp, err := f.svc.Calculate(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.StatusPendingReview), resp.Status)
	if assert.NotNil(t, resp.Summary) {
		assert.Equal(t, 1, resp.Summary.Calculated)
		assert.Equal(t, 1, resp.Summary.Errored)
		assert.Equal(t, 0, resp.Summary.Excluded)
	}

	// Annual taxable 6,000,000: 300,000 at 7% + 5,700,000 at 24% =
	// 1,389,000/yr, 115,750 for the month.
	assert.Equal(t, "500000.00", resp.TotalGross)
	assert.Equal(t, "115750.00", resp.TotalTax)
	assert.Equal(t, "384250.00", resp.TotalNet)
	assert.Equal(t, 1, resp.EmployeeCount)

	assert.Equal(t, []payrun.Status{payrun.StatusCalculating, payrun.StatusPendingReview}, f.repo.statusLog)

	for _, item := range f.repo.items {
		if item.EmployeeID == missingEmployee {
			assert.Equal(t, payrun.ItemError, item.Status)
			assert.NotNil(t, item.ErrorMessage)
		} else {
			assert.Equal(t, payrun.ItemCalculated, item.Status)
			assert.Equal(t, "384250", item.NetPay.String())
			assert.NotEmpty(t, item.TaxCalculation)
		}
	}

	assert.Contains(t, f.outbox.topics(), events.PayRunCalculatedTopic)
}

func TestPayRunService_Calculate_MissingTaxTableMarksItemsErrored(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	profile := salariedProfile(companyID, 500_000)
	items := []payrun.PayRunItem{pendingItem(run, profile.EmployeeID, profile.FullName)}

	f := newServiceFixture(t, run, items)
	f.employees.profiles[profile.EmployeeID.String()] = profile
	f.taxes.table = nil

	resp, err := f.svc.Calculate(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.NoError(t, err, "a configuration error never fails the batch")
	if assert.NotNil(t, resp.Summary) {
		assert.Equal(t, 0, resp.Summary.Calculated)
		assert.Equal(t, 1, resp.Summary.Errored)
	}
	assert.Equal(t, "0.00", resp.TotalNet)
}

func TestPayRunService_Calculate_RejectedWhenNotCalculable(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusApproved

	f := newServiceFixture(t, run, nil)

	_, err := f.svc.Calculate(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.ErrorIs(t, err, payrunerrors.ErrInvalidStatusTransition)
	assert.Empty(t, f.repo.statusLog)
}

func TestPayRunService_LoanBalanceAdvancesOnlyOnComplete(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	profile := salariedProfile(companyID, 500_000)
	loan := loanDeduction(companyID, profile.EmployeeID, 10_000, 50_000)
	item := pendingItem(run, profile.EmployeeID, profile.FullName)

	f := newServiceFixture(t, run, []payrun.PayRunItem{item})
	f.employees.profiles[profile.EmployeeID.String()] = profile
	f.deductions.deds = []deduction.EmployeeDeduction{loan}

	actorID := uuid.New().String()

	_, err := f.svc.Calculate(context.Background(), companyID.String(), actorID, run.ID.String())
	assert.NoError(t, err)

	// Replay after a configuration fix: reset the item and run the pass
	// again. One pay period must produce exactly one advance.
	_, err = f.svc.ResetItem(context.Background(), companyID.String(), actorID, run.ID.String(), item.ID.String())
	assert.NoError(t, err)
	_, err = f.svc.Calculate(context.Background(), companyID.String(), actorID, run.ID.String())
	assert.NoError(t, err)

	assert.Empty(t, f.deductions.advances, "calculation must not touch the loan ledger")

	f.repo.run.Status = payrun.StatusApproved
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err = f.svc.Complete(context.Background(), companyID.String(), actorID, run.ID.String())
	assert.NoError(t, err)

	if assert.Len(t, f.deductions.advances, 1) {
		adv := f.deductions.advances[0]
		assert.Equal(t, loan.ID.String(), adv.DeductionID)
		assert.Equal(t, "10000", adv.Applied.String())
		assert.False(t, adv.Deactivate)
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayRunService_CancelDuringCalculationKeepsItemsSkipsRollup(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	profile := salariedProfile(companyID, 500_000)
	item := pendingItem(run, profile.EmployeeID, profile.FullName)

	f := newServiceFixture(t, run, []payrun.PayRunItem{item})
	f.employees.profiles[profile.EmployeeID.String()] = profile

	// A cancel lands while the pass is writing item rows.
	f.repo.afterUpdateItem = func(r *fakePayRunRepository) {
		r.mu.Lock()
		r.run.Status = payrun.StatusCancelled
		r.mu.Unlock()
	}

	resp, err := f.svc.Calculate(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.StatusCancelled), resp.Status)
	assert.Nil(t, resp.Summary)

	// Item rows written before the cancel stay as computed.
	stored := f.repo.items[item.ID.String()]
	assert.Equal(t, payrun.ItemCalculated, stored.Status)
	assert.Equal(t, "384250", stored.NetPay.String())

	// The rollup never runs: no totals write, no PENDING_REVIEW transition,
	// no calculated event.
	assert.Empty(t, f.repo.totalsLog)
	assert.Equal(t, []payrun.Status{payrun.StatusCalculating}, f.repo.statusLog)
	assert.Empty(t, f.outbox.topics())
}

func TestPayRunService_Complete_FromDraftRejectedWithoutMutation(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)

	f := newServiceFixture(t, run, nil)

	_, err := f.svc.Complete(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.ErrorIs(t, err, payrunerrors.ErrInvalidStatusTransition)
	assert.Equal(t, payrun.StatusDraft, f.repo.run.Status)
	assert.Empty(t, f.repo.statusLog)
	assert.Empty(t, f.outbox.topics())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayRunService_Complete_QueuesPayslipGeneration(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusApproved

	f := newServiceFixture(t, run, nil)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Complete(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.StatusProcessing), resp.Status)
	assert.Equal(t, []string{events.PayslipRequestedTopic}, f.outbox.topics())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayRunService_SubmitForApproval_AutoApprovedWithoutChain(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusPendingReview

	f := newServiceFixture(t, run, nil)

	actorID := uuid.New().String()
	resp, err := f.svc.SubmitForApproval(context.Background(), companyID.String(), actorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.StatusApproved), resp.Status)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Contains(t, f.outbox.topics(), events.PayRunApprovedTopic)
}

func TestPayRunService_SubmitForApproval_ChainMovesToPendingApproval(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusPendingReview

	f := newServiceFixture(t, run, nil)

	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	approvals := &fakeApprovalService{
		submitFn: func(ctx context.Context, cid string, et approval.EntityType, eid string, amount decimal.Decimal, by string) (approval.SubmitResult, error) {
			return approval.SubmitResult{RequiresApproval: true, Request: &approval.ApprovalRequest{}}, nil
		},
	}
	svc := payrun.NewService(db, f.repo, payrun.Dependencies{
		Employees:  f.employees,
		Earnings:   &fakeEarningRepository{},
		Deductions: f.deductions,
		Taxes:      f.taxes,
		Hours:      &fakeHoursProvider{},
		Approvals:  approvals,
		Sequences:  sequence.NewGenerator(&fakeSequenceRepository{}),
		Outbox:     f.outbox,
		Audit:      bootstrap.NewStdoutAuditLogger(),
	})

	resp, err := svc.SubmitForApproval(context.Background(), companyID.String(), uuid.New().String(), run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.StatusPendingApproval), resp.Status)
	assert.Nil(t, resp.ApprovedAt)
	assert.Empty(t, f.outbox.topics())
}

func TestPayRunService_Cancel_GuardsAndSoftDeletes(t *testing.T) {
	companyID := uuid.New()

	completed := draftRun(companyID)
	completed.Status = payrun.StatusCompleted
	f := newServiceFixture(t, completed, nil)

	_, err := f.svc.Cancel(context.Background(), companyID.String(), uuid.New().String(), completed.ID.String())
	assert.ErrorIs(t, err, payrunerrors.ErrCannotCancel)
	assert.False(t, f.repo.deleted)

	reviewable := draftRun(companyID)
	reviewable.Status = payrun.StatusPendingReview
	f2 := newServiceFixture(t, reviewable, nil)

	f2.mock.ExpectBegin()
	f2.mock.ExpectCommit()

	resp, err := f2.svc.Cancel(context.Background(), companyID.String(), uuid.New().String(), reviewable.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, string(payrun.StatusCancelled), resp.Status)
	assert.True(t, f2.repo.deleted)
	assert.NoError(t, f2.mock.ExpectationsWereMet())
}

func TestPayRunService_ExcludeItem_RemovesFromTotals(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusPendingReview

	itemA := pendingItem(run, uuid.New(), "A")
	itemA.Status = payrun.ItemCalculated
	itemA.GrossEarnings = decimal.NewFromInt(500_000)
	itemA.NetPay = decimal.NewFromInt(400_000)

	itemB := pendingItem(run, uuid.New(), "B")
	itemB.Status = payrun.ItemCalculated
	itemB.GrossEarnings = decimal.NewFromInt(300_000)
	itemB.NetPay = decimal.NewFromInt(250_000)

	f := newServiceFixture(t, run, []payrun.PayRunItem{itemA, itemB})

	resp, err := f.svc.ExcludeItem(context.Background(), companyID.String(), uuid.New().String(), run.ID.String(), itemB.ID.String(), payrun.ExcludeItemRequest{
		Reason: "left the company mid-period",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.ItemExcluded), resp.Status)
	assert.True(t, f.repo.run.TotalGross.Equal(decimal.NewFromInt(500_000)))
	assert.True(t, f.repo.run.TotalNet.Equal(decimal.NewFromInt(400_000)))
	assert.Equal(t, 1, f.repo.run.EmployeeCount)
	assert.Contains(t, f.outbox.topics(), events.PayRunItemExcludedTopic)

	// Excluding again is rejected.
	_, err = f.svc.ExcludeItem(context.Background(), companyID.String(), uuid.New().String(), run.ID.String(), itemB.ID.String(), payrun.ExcludeItemRequest{Reason: "again"})
	assert.ErrorIs(t, err, payrunerrors.ErrItemAlreadyExcluded)
}

func TestPayRunService_ResetItem_ReturnsToPending(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusPendingReview

	item := pendingItem(run, uuid.New(), "A")
	item.Status = payrun.ItemError
	msg := "tax table missing"
	item.ErrorMessage = &msg

	f := newServiceFixture(t, run, []payrun.PayRunItem{item})

	resp, err := f.svc.ResetItem(context.Background(), companyID.String(), uuid.New().String(), run.ID.String(), item.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.ItemPending), resp.Status)
	assert.Nil(t, resp.ErrorMessage)
}

func TestPayRunService_RecalculateItem_RepairsErroredItem(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusPendingReview

	profile := salariedProfile(companyID, 500_000)
	item := pendingItem(run, profile.EmployeeID, "Adaeze Obi")
	item.Status = payrun.ItemError
	msg := "employee profile missing"
	item.ErrorMessage = &msg

	f := newServiceFixture(t, run, []payrun.PayRunItem{item})
	f.employees.profiles[profile.EmployeeID.String()] = profile

	resp, err := f.svc.RecalculateItem(context.Background(), companyID.String(), uuid.New().String(), run.ID.String(), item.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, string(payrun.ItemCalculated), resp.Status)
	assert.Nil(t, resp.ErrorMessage)
	assert.Equal(t, "384250.00", resp.NetPay)
	// Totals now reflect the repaired item.
	assert.Equal(t, "500000.00", f.repo.run.TotalGross.StringFixed(2))
}

func TestPayRunService_RecalculateItem_RejectsCalculatedItem(t *testing.T) {
	companyID := uuid.New()
	run := draftRun(companyID)
	run.Status = payrun.StatusPendingReview

	item := pendingItem(run, uuid.New(), "A")
	item.Status = payrun.ItemCalculated

	f := newServiceFixture(t, run, []payrun.PayRunItem{item})

	_, err := f.svc.RecalculateItem(context.Background(), companyID.String(), uuid.New().String(), run.ID.String(), item.ID.String())

	assert.True(t, errors.Is(err, payrunerrors.ErrItemNotProcessable))
}
