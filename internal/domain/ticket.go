package domain

import "time"

// Ticket is a helpdesk submission. Unauthenticated submitters prove mailbox
// possession with a contact-verification code before the ticket is accepted.
type Ticket struct {
	TicketID  string    `json:"id" dynamodbav:"ticket_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Name      string    `json:"name,omitempty" dynamodbav:"name"`
	Subject   string    `json:"subject" dynamodbav:"subject"`
	Body      string    `json:"body" dynamodbav:"body"`
	Status    string    `json:"status" dynamodbav:"status"` // "open" | "closed"
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)
