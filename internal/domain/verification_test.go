package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func freshCode() *VerificationCode {
	return &VerificationCode{
		Email:     "maria@example.com",
		Purpose:   PurposeLogin,
		Code:      "123456",
		CreatedAt: issuedAt.Unix(),
		ExpiresAt: issuedAt.Add(CodeValidity).Unix(),
	}
}

func TestConsume_SucceedsExactlyOnce(t *testing.T) {
	v := freshCode()
	now := issuedAt.Add(time.Minute)

	require.NoError(t, v.Consume("123456", now))
	require.NotNil(t, v.UsedAt)
	assert.Equal(t, now.Unix(), *v.UsedAt)

	// Replaying the same correct code fails: the row is spent.
	assert.ErrorIs(t, v.Consume("123456", now.Add(time.Second)), ErrCodeInvalid)
}

func TestConsume_WrongCode(t *testing.T) {
	v := freshCode()
	assert.ErrorIs(t, v.Consume("654321", issuedAt.Add(time.Minute)), ErrCodeInvalid)
	// The failed attempt does not spend the code.
	assert.Nil(t, v.UsedAt)
	assert.NoError(t, v.Consume("123456", issuedAt.Add(time.Minute)))
}

func TestConsume_Expired(t *testing.T) {
	v := freshCode()
	assert.ErrorIs(t, v.Consume("123456", issuedAt.Add(CodeValidity)), ErrCodeInvalid)
	assert.ErrorIs(t, v.Consume("123456", issuedAt.Add(CodeValidity+time.Hour)), ErrCodeInvalid)
}

func TestConsume_JustBeforeExpiry(t *testing.T) {
	v := freshCode()
	assert.NoError(t, v.Consume("123456", issuedAt.Add(CodeValidity-time.Second)))
}

func TestConsume_ReplacedCodeVoidsThePriorOne(t *testing.T) {
	// One row per (email, purpose): issuing again overwrites the stored code,
	// so the earlier code can never be consumed.
	replacement := freshCode()
	replacement.Code = "999999"
	assert.ErrorIs(t, replacement.Consume("123456", issuedAt.Add(time.Minute)), ErrCodeInvalid)
	assert.NoError(t, replacement.Consume("999999", issuedAt.Add(time.Minute)))
}

func TestConsume_AllFailuresAreUniform(t *testing.T) {
	now := issuedAt.Add(time.Minute)

	wrong := freshCode()
	expired := freshCode()
	expired.ExpiresAt = issuedAt.Unix()
	spent := freshCode()
	require.NoError(t, spent.Consume("123456", now))

	errWrong := wrong.Consume("000000", now)
	errExpired := expired.Consume("123456", now)
	errSpent := spent.Consume("123456", now)

	assert.Equal(t, errWrong, errExpired)
	assert.Equal(t, errExpired, errSpent)
	assert.ErrorIs(t, errWrong, ErrCodeInvalid)
}

func TestIsExpired_Boundary(t *testing.T) {
	v := freshCode()
	assert.False(t, v.IsExpired(issuedAt.Add(CodeValidity-time.Second)))
	assert.True(t, v.IsExpired(issuedAt.Add(CodeValidity)))
}
