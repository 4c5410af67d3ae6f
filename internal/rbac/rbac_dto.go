package rbac

import "go-payroll/internal/domain"

// EnforceRequest is shared with the middleware layer so any enforcer
// implementation can be plugged in behind the same interface.
type EnforceRequest = domain.EnforceRequest

type EnforceResponse = domain.EnforceResponse
