package http

import (
	"github.com/client-portal-api/internal/infrastructure/dynamo"
	"github.com/client-portal-api/internal/infrastructure/identity"
	jwtinfra "github.com/client-portal-api/internal/infrastructure/jwt"
	"github.com/client-portal-api/internal/infrastructure/mail"
	"github.com/client-portal-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ClientRepo  *dynamo.ClientRepo
	CodeRepo    *dynamo.CodeRepo
	TicketRepo  *dynamo.TicketRepo
	Mailer      mail.Mailer
	SMSSender   sns.SMSSender
	Platform    *identity.Client
	JWTProvider *jwtinfra.Provider
}
