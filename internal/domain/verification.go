package domain

import "time"

// Purpose partitions the code namespace: a code issued for one purpose can
// never be consumed for another.
type Purpose string

const (
	PurposeLogin   Purpose = "login"
	PurposeContact Purpose = "contact-verification"
)

// ValidPurpose reports whether p is one of the recognized purposes.
func ValidPurpose(p Purpose) bool {
	return p == PurposeLogin || p == PurposeContact
}

// VerificationCode stores a one-time 6-digit code.
// PK: email, SK: purpose — at most one row per (email, purpose) pair.
// ExpiresAt doubles as the DynamoDB TTL attribute.
type VerificationCode struct {
	Email     string  `json:"email" dynamodbav:"email"`
	Purpose   Purpose `json:"purpose" dynamodbav:"purpose"`
	Code      string  `json:"-" dynamodbav:"code"`
	CreatedAt int64   `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64   `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	UsedAt    *int64  `json:"used_at,omitempty" dynamodbav:"used_at,omitempty"`
}

// CodeValidity is the window between issuance and expiry.
const CodeValidity = 5 * time.Minute

func (v *VerificationCode) IsExpired(now time.Time) bool {
	return v.ExpiresAt <= now.Unix()
}

func (v *VerificationCode) IsUsed() bool {
	return v.UsedAt != nil
}

// Consume marks the code used at now. It succeeds at most once per issued
// code: the submitted code must match the stored one, the row must be unused
// and not yet expired. Every failure mode collapses to ErrCodeInvalid so
// callers cannot tell a wrong code from an expired or replayed one.
func (v *VerificationCode) Consume(code string, now time.Time) error {
	if v.Code != code || v.IsUsed() || v.IsExpired(now) {
		return ErrCodeInvalid
	}
	ts := now.Unix()
	v.UsedAt = &ts
	return nil
}
