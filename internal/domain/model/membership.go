package model

import (
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"

	"github.com/google/uuid"
)

type MembershipType string

const (
	MembershipMonthly   MembershipType = "monthly"
	MembershipQuarterly MembershipType = "quarterly"
	MembershipBiannual  MembershipType = "biannual"
	MembershipAnnual    MembershipType = "annual"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

// Membership is a paid association membership for one user over a period.
type Membership struct {
	ID                string
	UserID            string
	MembershipType    MembershipType
	StartDate         time.Time
	EndDate           time.Time
	PaymentStatus     PaymentStatus
	PaymentMethod     string
	PaymentAmount     int64 // cents
	PaidAt            *time.Time
	IsActive          bool
	RenewalReminded   bool
	RenewalRemindedAt *time.Time
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewMembership(userID string, typ MembershipType, start, end time.Time, amount int64) (*Membership, error) {
	if userID == "" || typ == "" || start.IsZero() || end.IsZero() || amount < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !end.After(start) {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Membership{
		ID:             uuid.NewString(),
		UserID:         userID,
		MembershipType: typ,
		StartDate:      start,
		EndDate:        end,
		PaymentStatus:  PaymentPending,
		PaymentAmount:  amount,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (m *Membership) IsZero() bool { return m == nil || m.ID == "" }

// ActiveNow reports whether the membership currently grants access.
func (m *Membership) ActiveNow(now time.Time) bool {
	return m.IsActive && !now.Before(m.StartDate) && !now.After(m.EndDate)
}

// ExpiringSoon reports whether the membership lapses within the window.
func (m *Membership) ExpiringSoon(now time.Time, window time.Duration) bool {
	return m.IsActive && m.EndDate.After(now) && !m.EndDate.After(now.Add(window))
}

// Renew extends the membership by the duration of its type from its current
// end date, or from now when it already lapsed.
func (m *Membership) Renew(now time.Time) {
	base := m.EndDate
	if base.Before(now) {
		base = now
	}
	m.StartDate = base
	m.EndDate = base.AddDate(0, m.monthSpan(), 0)
	m.IsActive = true
	m.RenewalReminded = false
	m.RenewalRemindedAt = nil
	m.PaymentStatus = PaymentPending
	m.UpdatedAt = now
}

func (m *Membership) monthSpan() int {
	switch m.MembershipType {
	case MembershipQuarterly:
		return 3
	case MembershipBiannual:
		return 6
	case MembershipAnnual:
		return 12
	default:
		return 1
	}
}
