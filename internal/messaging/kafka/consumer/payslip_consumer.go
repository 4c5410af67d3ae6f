package consumer

import (
	"context"
	"encoding/json"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-payroll/internal/events"
	"go-payroll/internal/payslip"
	paysliperrors "go-payroll/internal/payslip/errors"
)

// ConsumePayslipRequested drives payslip generation for completed pay runs.
// Generation is idempotent, so a redelivered message after a crash between
// generate and commit does no harm.
func ConsumePayslipRequested(
	ctx context.Context,
	reader *kafkago.Reader,
	payslipService payslip.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payslip")
	log.Info("payslip consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payslip consumer stopped")
				return
			}
			log.Error("fetch payslip message failed", zap.Error(err))
			continue
		}

		var event events.PayslipRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payslip requested event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		generated, err := payslipService.GenerateForPayRun(ctx, event.CompanyID, event.PayRunID)
		if err != nil {
			if errors.Is(err, paysliperrors.ErrPayRunNotProcessing) {
				// Run was cancelled or never reached PROCESSING; nothing to retry.
				log.Warn("pay run not in processing, dropping event",
					zap.String("pay_run_id", event.PayRunID),
					zap.String("company_id", event.CompanyID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("generate payslips failed",
				zap.String("pay_run_id", event.PayRunID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payslip message failed", zap.Error(err))
			continue
		}

		log.Info("payslips generated for pay run",
			zap.String("pay_run_id", event.PayRunID),
			zap.String("company_id", event.CompanyID),
			zap.Int("generated", generated),
		)
	}
}
