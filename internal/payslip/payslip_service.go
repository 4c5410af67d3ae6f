package payslip

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrun"
	paysliperrors "go-payroll/internal/payslip/errors"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/sequence"
)

// Config points at the payslip file store. An empty StorageDir disables file
// rendering; records are still created.
type Config struct {
	StorageDir    string
	PublicBaseURL string
}

//go:generate mockgen -source=payslip_service.go -destination=mock/payslip_service_mock.go -package=mock
type Service interface {
	GenerateForPayRun(ctx context.Context, companyID, payRunID string) (int, error)
	GetByID(ctx context.Context, companyID, id string) (PayslipResponse, error)
	GetAllByEmployee(ctx context.Context, companyID, employeeID string) ([]PayslipResponse, error)
	GetAllByPayRun(ctx context.Context, companyID, payRunID string) ([]PayslipResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	runs   payrun.Repository
	seq    *sequence.Generator
	outbox kafka.OutboxRepository
	cfg    Config
}

func NewService(
	db *sql.DB,
	repo Repository,
	runs payrun.Repository,
	seq *sequence.Generator,
	outbox kafka.OutboxRepository,
	cfg Config,
) Service {
	return &service{
		db:     db,
		repo:   repo,
		runs:   runs,
		seq:    seq,
		outbox: outbox,
		cfg:    cfg,
	}
}

// GenerateForPayRun materializes one payslip per CALCULATED item of a run in
// PROCESSING, then marks the run COMPLETED. Redelivered events are
// harmless: already-completed runs return zero and items with an existing
// payslip are skipped.
func (s *service) GenerateForPayRun(ctx context.Context, companyID, payRunID string) (int, error) {
	log := contextutil.GetLogger(ctx, zap.L()).Named("payslip")

	run, err := s.runs.FindByIDAndCompany(ctx, companyID, payRunID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, paysliperrors.ErrPayslipNotFound
		}
		return 0, err
	}

	if run.Status == payrun.StatusCompleted {
		return 0, nil
	}
	if run.Status != payrun.StatusProcessing {
		return 0, paysliperrors.ErrPayRunNotProcessing
	}

	items, err := s.runs.FindItems(ctx, companyID, payRunID)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, item := range items {
		if item.Status != payrun.ItemCalculated {
			continue
		}

		exists, err := s.repo.ExistsForItem(ctx, companyID, item.ID.String())
		if err != nil {
			return generated, err
		}
		if exists {
			continue
		}

		slip, err := s.buildPayslip(ctx, companyID, run, item)
		if err != nil {
			return generated, err
		}

		if err := s.repo.Create(ctx, slip); err != nil {
			return generated, err
		}
		generated++
	}

	run.Status = payrun.StatusCompleted
	if err := s.runs.UpdateStatus(ctx, run); err != nil {
		return generated, err
	}

	s.enqueueCompletedEvent(ctx, run)
	log.Info("payslips generated",
		zap.String("pay_run_id", payRunID),
		zap.String("company_id", companyID),
		zap.Int("generated", generated),
	)

	return generated, nil
}

func (s *service) buildPayslip(ctx context.Context, companyID string, run *payrun.PayRun, item payrun.PayRunItem) (*Payslip, error) {
	ytd, err := s.repo.SumYearToDate(ctx, companyID, item.EmployeeID.String(), run.PayDate.Year(), run.PayDate)
	if err != nil {
		return nil, err
	}

	reference, err := s.seq.Next(ctx, companyID, sequence.PrefixPayslip, run.PayDate)
	if err != nil {
		return nil, err
	}

	slip := &Payslip{
		ID:           uuid.New(),
		CompanyID:    run.CompanyID,
		PayRunID:     run.ID,
		PayRunItemID: item.ID,
		EmployeeID:   item.EmployeeID,
		EmployeeName: item.EmployeeName,
		Reference:    reference,

		PeriodStart: run.PeriodStart,
		PeriodEnd:   run.PeriodEnd,
		PayDate:     run.PayDate,

		GrossEarnings:   item.GrossEarnings,
		IncomeTax:       item.IncomeTax,
		TotalDeductions: item.TotalDeductions,
		NetPay:          item.NetPay,

		YTDGross: ytd.Gross.Add(item.GrossEarnings),
		YTDTax:   ytd.Tax.Add(item.IncomeTax),
		YTDNet:   ytd.Net.Add(item.NetPay),

		GeneratedAt: time.Now().UTC(),
	}

	if s.cfg.StorageDir != "" {
		if err := s.writeFile(slip); err != nil {
			return nil, err
		}
	}

	return slip, nil
}

func (s *service) writeFile(slip *Payslip) error {
	pdf, err := renderPDF(*slip)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.cfg.StorageDir, slip.CompanyID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	name := slip.Reference + ".pdf"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}

	slip.FilePath = path
	if s.cfg.PublicBaseURL != "" {
		slip.FileURL = strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + slip.CompanyID.String() + "/" + name
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PayslipResponse, error) {
	slip, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, paysliperrors.ErrPayslipNotFound
		}
		return PayslipResponse{}, err
	}
	return mapToResponse(*slip), nil
}

func (s *service) GetAllByEmployee(ctx context.Context, companyID, employeeID string) ([]PayslipResponse, error) {
	slips, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(slips), nil
}

func (s *service) GetAllByPayRun(ctx context.Context, companyID, payRunID string) ([]PayslipResponse, error) {
	slips, err := s.repo.FindAllByPayRun(ctx, companyID, payRunID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(slips), nil
}

func (s *service) enqueueCompletedEvent(ctx context.Context, run *payrun.PayRun) {
	if s.outbox == nil {
		return
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"pay_run", run.ID.String(),
		"payrun.completed", events.PayRunCompletedTopic,
		events.PayRunCompletedEvent{
			EventType:  "payrun.completed",
			PayRunID:   run.ID.String(),
			CompanyID:  run.CompanyID.String(),
			Reference:  run.Reference,
			TotalNet:   run.TotalNet.StringFixed(2),
			OccurredAt: time.Now().UTC(),
		},
	)
	if err == nil {
		err = s.outbox.Create(ctx, event)
	}
	if err != nil {
		contextutil.GetLogger(ctx, zap.L()).Error("failed to enqueue completed event",
			zap.String("pay_run_id", run.ID.String()),
			zap.Error(err),
		)
	}
}
