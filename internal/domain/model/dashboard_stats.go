package model

import "time"

// DashboardStats is the aggregated snapshot shown on the admin landing page.
type DashboardStats struct {
	TotalUsers   int `json:"total_users"`
	ActiveUsers  int `json:"active_users"`
	PendingUsers int `json:"pending_users"`
	ExpiredUsers int `json:"expired_users"`

	TotalMemberships    int     `json:"total_memberships"`
	ActiveMemberships   int     `json:"active_memberships"`
	ExpiringMemberships int     `json:"expiring_memberships"`
	ExpiredMemberships  int     `json:"expired_memberships"`
	MembershipsByMonth  [12]int `json:"memberships_by_month"`

	TotalCodes     int `json:"total_codes"`
	AssignedCodes  int `json:"assigned_codes"`
	UsedCodes      int `json:"used_codes"`
	AvailableCodes int `json:"available_codes"`

	GeneratedAt time.Time `json:"generated_at"`
}
