package services_test

import (
	"errors"
	"testing"

	"catalog/internal/services"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(routingKey string, body []byte) error {
	p.calls++
	return p.err
}

func TestBreakerPublisher_OpensAfterFailures(t *testing.T) {
	inner := &countingPublisher{err: errors.New("connection refused")}
	publisher := services.NewBreakerPublisher(inner, quietLogger())

	for i := 0; i < 3; i++ {
		assert.Error(t, publisher.Publish("product.created", []byte(`{}`)))
	}
	assert.Equal(t, "open", publisher.State())

	err := publisher.Publish("product.created", []byte(`{}`))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerPublisher_PassesThrough(t *testing.T) {
	inner := &countingPublisher{}
	publisher := services.NewBreakerPublisher(inner, quietLogger())

	for i := 0; i < 5; i++ {
		assert.NoError(t, publisher.Publish("product.updated", []byte(`{}`)))
	}
	assert.Equal(t, 5, inner.calls)
	assert.Equal(t, "closed", publisher.State())
}
