package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/client-portal-api/internal/domain"
)

// ClientRepo provides typed DynamoDB operations for the clients table.
// This service only reads it; the directory CRUD lives elsewhere.
type ClientRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewClientRepo(client *dynamodb.Client, tableName string) *ClientRepo {
	return &ClientRepo{client: client, tableName: tableName}
}

func (r *ClientRepo) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("client_id", clientID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("client not found: %w", domain.ErrNotFound)
	}
	var c domain.Client
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepo) FindByCode(ctx context.Context, code string) (*domain.Client, error) {
	return r.queryGSI(ctx, "code-index", "code", code)
}

func (r *ClientRepo) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *ClientRepo) FindByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	return r.queryGSI(ctx, "phone-index", "phone", phone)
}

// queryGSI returns the single matching client. Limit 2 so a second match is
// visible: identifying fields are supposed to be unique, and more than one
// row is a data defect the caller must surface, not paper over.
func (r *ClientRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Client, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(2),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("client not found: %w", domain.ErrNotFound)
	}
	if len(out.Items) > 1 {
		return nil, fmt.Errorf("%s %q matches multiple clients: %w", attr, value, domain.ErrDefect)
	}
	var c domain.Client
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	if !c.Enable {
		return nil, fmt.Errorf("client disabled: %w", domain.ErrNotFound)
	}
	return &c, nil
}
