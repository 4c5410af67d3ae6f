package sequence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"go-payroll/internal/shared/apperror"
)

const (
	PrefixPayRun  = "PAY"
	PrefixPayslip = "PSL"
	PrefixOrder   = "ORD"
	PrefixReceipt = "RCP"
)

var ErrSequenceConflict = apperror.New(
	apperror.CodeConflict,
	"reference number allocation conflicted, retry the operation",
	http.StatusConflict,
)

const (
	maxAttempts  = 3
	retryBackoff = 25 * time.Millisecond
)

// Generator allocates human-readable references <PREFIX>-<YYYYMMDD>-<NNNN>,
// unique per company+prefix+date.
type Generator struct {
	repo Repository
}

func NewGenerator(repo Repository) *Generator {
	return &Generator{repo: repo}
}

// Next allocates the next reference for the given key. Serialization failures
// and unique violations from concurrent allocators are retried with backoff;
// the conflict only surfaces to the caller once the retry budget is spent.
func (g *Generator) Next(ctx context.Context, companyID string, prefix string, date time.Time) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		seq, err := g.repo.NextValue(ctx, companyID, prefix, date)
		if err == nil {
			return Format(prefix, date, seq), nil
		}

		if !isRetryable(err) {
			return "", err
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	return "", ErrSequenceConflict.WithErr(lastErr)
}

func Format(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("20060102"), seq)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected,
		// 23505 unique_violation (concurrent first insert for the key).
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}
	return false
}
