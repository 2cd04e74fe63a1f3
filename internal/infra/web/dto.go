package web

import (
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// Wire representations. The password hash never leaves the server, so
// users get an explicit DTO instead of the domain struct.

type userDTO struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func toUserDTO(u *model.User) userDTO {
	return userDTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Role:        string(u.Role),
		Status:      string(u.Status),
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

func toUserDTOs(users []*model.User) []userDTO {
	out := make([]userDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	return out
}

type codeDTO struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	BatchID     string     `json:"batch_id"`
	IsUsed      bool       `json:"is_used"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	EmailSent   bool       `json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toCodeDTO(c *model.AccessCode) codeDTO {
	return codeDTO{
		ID:          c.ID,
		Code:        c.Code,
		BatchID:     c.BatchID,
		IsUsed:      c.IsUsed,
		AssignedTo:  c.AssignedTo,
		AssignedAt:  c.AssignedAt,
		ExpiresAt:   c.ExpiresAt,
		EmailSent:   c.EmailSent,
		EmailSentAt: c.EmailSentAt,
		CreatedAt:   c.CreatedAt,
	}
}

func toCodeDTOs(codes []*model.AccessCode) []codeDTO {
	out := make([]codeDTO, len(codes))
	for i, c := range codes {
		out[i] = toCodeDTO(c)
	}
	return out
}

type batchDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ImportedBy    string    `json:"imported_by"`
	ImportedAt    time.Time `json:"imported_at"`
	TotalCodes    int       `json:"total_codes"`
	AssignedCodes int       `json:"assigned_codes"`
	Available     int       `json:"available_codes"`
	ExpiryDate    time.Time `json:"expiry_date"`
	SourceFile    string    `json:"source_file,omitempty"`
	IsActive      bool      `json:"is_active"`
}

func toBatchDTO(b *model.CodeBatch) batchDTO {
	return batchDTO{
		ID:            b.ID,
		Name:          b.Name,
		Description:   b.Description,
		ImportedBy:    b.ImportedBy,
		ImportedAt:    b.ImportedAt,
		TotalCodes:    b.TotalCodes,
		AssignedCodes: b.AssignedCodes,
		Available:     b.Available(),
		ExpiryDate:    b.ExpiryDate,
		SourceFile:    b.SourceFile,
		IsActive:      b.IsActive,
	}
}

func toBatchDTOs(batches []*model.CodeBatch) []batchDTO {
	out := make([]batchDTO, len(batches))
	for i, b := range batches {
		out[i] = toBatchDTO(b)
	}
	return out
}

type membershipDTO struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	MembershipType    string     `json:"membership_type"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	PaymentStatus     string     `json:"payment_status"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	PaymentAmount     int64      `json:"payment_amount"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	IsActive          bool       `json:"is_active"`
	RenewalReminded   bool       `json:"renewal_reminded"`
	RenewalRemindedAt *time.Time `json:"renewal_reminded_at,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toMembershipDTO(m *model.Membership) membershipDTO {
	return membershipDTO{
		ID:                m.ID,
		UserID:            m.UserID,
		MembershipType:    string(m.MembershipType),
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		PaymentStatus:     string(m.PaymentStatus),
		PaymentMethod:     m.PaymentMethod,
		PaymentAmount:     m.PaymentAmount,
		PaidAt:            m.PaidAt,
		IsActive:          m.IsActive,
		RenewalReminded:   m.RenewalReminded,
		RenewalRemindedAt: m.RenewalRemindedAt,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toMembershipDTOs(ms []*model.Membership) []membershipDTO {
	out := make([]membershipDTO, len(ms))
	for i, m := range ms {
		out[i] = toMembershipDTO(m)
	}
	return out
}
