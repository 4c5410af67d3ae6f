package payslip

type PayslipResponse struct {
	ID           string `json:"id"`
	PayRunID     string `json:"pay_run_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reference    string `json:"reference"`

	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	PayDate     string `json:"pay_date"`

	GrossEarnings   string `json:"gross_earnings"`
	IncomeTax       string `json:"income_tax"`
	TotalDeductions string `json:"total_deductions"`
	NetPay          string `json:"net_pay"`

	YTDGross string `json:"ytd_gross"`
	YTDTax   string `json:"ytd_tax"`
	YTDNet   string `json:"ytd_net"`

	FileURL     string `json:"file_url,omitempty"`
	GeneratedAt string `json:"generated_at"`
}

func mapToResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:           p.ID.String(),
		PayRunID:     p.PayRunID.String(),
		EmployeeID:   p.EmployeeID.String(),
		EmployeeName: p.EmployeeName,
		Reference:    p.Reference,

		PeriodStart: p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   p.PeriodEnd.Format("2006-01-02"),
		PayDate:     p.PayDate.Format("2006-01-02"),

		GrossEarnings:   p.GrossEarnings.StringFixed(2),
		IncomeTax:       p.IncomeTax.StringFixed(2),
		TotalDeductions: p.TotalDeductions.StringFixed(2),
		NetPay:          p.NetPay.StringFixed(2),

		YTDGross: p.YTDGross.StringFixed(2),
		YTDTax:   p.YTDTax.StringFixed(2),
		YTDNet:   p.YTDNet.StringFixed(2),

		FileURL:     p.FileURL,
		GeneratedAt: p.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapToListResponse(slips []Payslip) []PayslipResponse {
	out := make([]PayslipResponse, 0, len(slips))
	for _, p := range slips {
		out = append(out, mapToResponse(p))
	}
	return out
}
