package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func intPtr(v int) *int { return &v }

func TestGetModelCapabilityScore_FromCatalog(t *testing.T) {
	catalog := new(MockModelCatalog)
	catalog.On("GetByModel", mock.Anything, "gpt-4o").
		Return(&domain.CatalogModel{Model: "gpt-4o", ReasoningScore: intPtr(85)}, nil).Once()

	s := NewScoreService(catalog)
	ctx := context.Background()

	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))

	// Second call within the TTL never hits the catalog again.
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))
	catalog.AssertExpectations(t)
}

func TestGetModelCapabilityScore_CatalogEntryWithoutScore(t *testing.T) {
	catalog := new(MockModelCatalog)
	catalog.On("GetByModel", mock.Anything, "some-model").
		Return(&domain.CatalogModel{Model: "some-model"}, nil).Once()

	s := NewScoreService(catalog)
	assert.Equal(t, defaultCapabilityScore, s.GetModelCapabilityScore(context.Background(), "some-model"))
}

func TestGetModelCapabilityScore_FallbackTable(t *testing.T) {
	catalog := new(MockModelCatalog)
	catalog.On("GetByModel", mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	s := NewScoreService(catalog)
	ctx := context.Background()

	assert.Equal(t, 96, s.GetModelCapabilityScore(ctx, "claude-opus-4-1"))
	assert.Equal(t, 88, s.GetModelCapabilityScore(ctx, "claude-sonnet-4-5"))
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))
	assert.Equal(t, 70, s.GetModelCapabilityScore(ctx, "claude-haiku-4"))
	assert.Equal(t, defaultCapabilityScore, s.GetModelCapabilityScore(ctx, "mystery-model"))
}

func TestGetModelCapabilityScore_NilCatalog(t *testing.T) {
	s := NewScoreService(nil)
	assert.Equal(t, 93, s.GetModelCapabilityScore(context.Background(), "o1-preview"))
}

func TestGetModelCapabilityScore_TTLExpiry(t *testing.T) {
	catalog := new(MockModelCatalog)
	catalog.On("GetByModel", mock.Anything, "gpt-4o").
		Return(&domain.CatalogModel{Model: "gpt-4o", ReasoningScore: intPtr(85)}, nil).Twice()

	s := NewScoreService(catalog)
	base := time.Now()
	s.now = func() time.Time { return base }

	ctx := context.Background()
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))

	// Just inside the catalog TTL: still cached.
	s.now = func() time.Time { return base.Add(catalogScoreTTL - time.Second) }
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))

	// Past the TTL: the catalog is consulted again.
	s.now = func() time.Time { return base.Add(catalogScoreTTL + time.Second) }
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))
	catalog.AssertExpectations(t)
}

func TestGetModelCapabilityScore_FallbackTTLIsShorter(t *testing.T) {
	catalog := new(MockModelCatalog)
	catalog.On("GetByModel", mock.Anything, "gpt-4o").
		Return(nil, errors.New("db down")).Twice()

	s := NewScoreService(catalog)
	base := time.Now()
	s.now = func() time.Time { return base }

	ctx := context.Background()
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))

	// A fallback-sourced score expires after a minute, not five.
	s.now = func() time.Time { return base.Add(fallbackScoreTTL + time.Second) }
	assert.Equal(t, 85, s.GetModelCapabilityScore(ctx, "gpt-4o"))
	catalog.AssertExpectations(t)
}

func TestScoreService_ClearCache(t *testing.T) {
	catalog := new(MockModelCatalog)
	catalog.On("GetByModel", mock.Anything, "gpt-4o").
		Return(&domain.CatalogModel{Model: "gpt-4o", ReasoningScore: intPtr(85)}, nil).Twice()

	s := NewScoreService(catalog)
	ctx := context.Background()

	s.GetModelCapabilityScore(ctx, "gpt-4o")
	s.ClearCache()
	s.GetModelCapabilityScore(ctx, "gpt-4o")
	catalog.AssertExpectations(t)
}
