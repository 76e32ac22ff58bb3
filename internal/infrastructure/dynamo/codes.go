package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/client-portal-api/internal/domain"
)

// CodeRepo persists one-time verification codes.
// PK: email, SK: purpose — the table holds at most one row per pair.
type CodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCodeRepo(client *dynamodb.Client, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName}
}

// Replace voids any prior code for (email, purpose) and stores the new one.
// This is an explicit delete followed by a put, not a transaction: two
// concurrent issuances for the same pair can interleave so that only the
// later code stands. Accepted — the same mailbox rarely races itself.
func (r *CodeRepo) Replace(ctx context.Context, v *domain.VerificationCode) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("email", v.Email, "purpose", string(v.Purpose)),
	})
	if err != nil {
		return fmt.Errorf("void prior code: %w", err)
	}
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CodeRepo) Get(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("email", email, "purpose", string(purpose)),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	var v domain.VerificationCode
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// consumeCondition is the server-side form of
// (*domain.VerificationCode).Consume, evaluated atomically by UpdateItem:
// the stored code must match, used_at must be absent and expires_at still in
// the future. The two must stay clause-for-clause in sync.
const consumeCondition = "#c = :code AND attribute_not_exists(used_at) AND expires_at > :now"

// MarkUsed consumes the code atomically. The conditional update succeeds at
// most once per issued code. Every failure mode — missing row, wrong code,
// already used, expired — surfaces as ErrCodeInvalid.
func (r *CodeRepo) MarkUsed(ctx context.Context, email string, purpose domain.Purpose, code string, now time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("email", email, "purpose", string(purpose)),
		UpdateExpression:    aws.String("SET used_at = :now"),
		ConditionExpression: aws.String(consumeCondition),
		ExpressionAttributeNames: map[string]string{"#c": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.ErrCodeInvalid
		}
		return err
	}
	return nil
}
