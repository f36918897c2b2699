package policy

type UpdatePolicyInput struct {
	Enabled         bool     `json:"enabled"`
	CenterLatitude  *float64 `json:"center_latitude"`
	CenterLongitude *float64 `json:"center_longitude"`
	RadiusMeters    float64  `json:"radius_meters"`
	WorkStart       string   `json:"work_start"` // HH:MM
	WorkEnd         string   `json:"work_end"`   // HH:MM
	RequireApproval bool     `json:"require_approval"`
}
