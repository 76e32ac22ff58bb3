package dynamo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsumeCondition_CoversEveryConsumeClause(t *testing.T) {
	// The condition expression is the atomic server-side twin of
	// domain.VerificationCode.Consume. One clause per failure mode: code
	// mismatch, already consumed, expired.
	assert.Contains(t, consumeCondition, "#c = :code")
	assert.Contains(t, consumeCondition, "attribute_not_exists(used_at)")
	assert.Contains(t, consumeCondition, "expires_at > :now")
}
