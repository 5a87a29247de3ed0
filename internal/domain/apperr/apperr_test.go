package apperr

import (
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

type stockErr struct{}

func (stockErr) Error() string { return "out of stock" }
func (stockErr) Kind() Kind    { return KindInsufficientStock }

func TestKindOf(t *testing.T) {
	notFound := NotFound("plan not found")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"sentinel", notFound, KindNotFound},
		{"wrapped sentinel", errors.Wrap(notFound, "get plan"), KindNotFound},
		{"fmt wrapped", fmt.Errorf("load: %w", Conflict("dup")), KindConflict},
		{"custom type", errors.Wrap(stockErr{}, "checkout"), KindInsufficientStock},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "bad input", Message(errors.Wrap(Validation("bad input"), "ctx"), "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("pq: connection reset"), "fallback"))
}

func TestSentinelIdentity(t *testing.T) {
	a := NotFound("x")
	b := NotFound("x")
	assert.ErrorIs(t, errors.Wrap(a, "wrap"), a)
	assert.NotErrorIs(t, a, b)
}
