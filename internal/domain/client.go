package domain

import "time"

// Client is a business-directory identity. This service reads it to answer
// lookups and never mutates the identifying fields.
type Client struct {
	ClientID  string    `json:"id" dynamodbav:"client_id"`
	Code      string    `json:"code" dynamodbav:"code"` // public short code, e.g. CLI00001
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"` // canonical, stored lower-case
	Phone     *string   `json:"phone,omitempty" dynamodbav:"phone"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// LookupRequest carries exactly one populated identifier field.
type LookupRequest struct {
	Code  *string `json:"code"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

// PublicClient is the pre-verification view of a resolved client: enough for
// the visitor to confirm "that's me", never the full contact details.
type PublicClient struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	MaskedEmail string `json:"masked_email"`
}
