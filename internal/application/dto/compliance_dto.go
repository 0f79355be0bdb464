package dto

// SweepResultResponse esito di un passaggio dello sweeper di conservazione
// per POST /api/compliance/sweep.
type SweepResultResponse struct {
	Found      int      `json:"found"`
	Anonymized int      `json:"anonymized"`
	Failed     int      `json:"failed"`
	Failures   []string `json:"failures,omitempty"` // un messaggio per record fallito
}

// ComplianceDashboardResponse riepilogo di conformità per
// GET /api/compliance/dashboard.
type ComplianceDashboardResponse struct {
	RetentionYears    int     `json:"retention_years"`
	Total             int     `json:"total"`
	Compliant         int     `json:"compliant"`
	NearExpiry        int     `json:"near_expiry"`
	NonCompliant      int     `json:"non_compliant"`
	CompliantPercent  float64 `json:"compliant_percent"`
	NearExpiryPercent float64 `json:"near_expiry_percent"`
}
