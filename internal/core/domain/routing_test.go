package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplexityLevel_Rank(t *testing.T) {
	assert.Equal(t, 0, ComplexitySuperEasy.Rank())
	assert.Equal(t, 1, ComplexityEasy.Rank())
	assert.Equal(t, 2, ComplexityMedium.Rank())
	assert.Equal(t, 3, ComplexityHard.Rank())
	assert.Equal(t, 4, ComplexitySuperHard.Rank())
	assert.Equal(t, 0, ComplexityLevel("bogus").Rank())
}

func TestComplexityLevel_Valid(t *testing.T) {
	assert.True(t, ComplexityMedium.Valid())
	assert.False(t, ComplexityLevel("").Valid())
	assert.False(t, ComplexityLevel("extreme").Valid())
}

func TestEnsureMinComplexity(t *testing.T) {
	// Below the floor: bumped up.
	assert.Equal(t, ComplexityMedium, EnsureMinComplexity(ComplexitySuperEasy, ComplexityMedium))
	assert.Equal(t, ComplexityMedium, EnsureMinComplexity(ComplexityEasy, ComplexityMedium))

	// At or above the floor: never downgraded.
	assert.Equal(t, ComplexityMedium, EnsureMinComplexity(ComplexityMedium, ComplexityMedium))
	assert.Equal(t, ComplexitySuperHard, EnsureMinComplexity(ComplexitySuperHard, ComplexityMedium))

	// Invalid level snaps to the floor.
	assert.Equal(t, ComplexityMedium, EnsureMinComplexity(ComplexityLevel("bogus"), ComplexityMedium))

	// Invalid floor leaves the level alone.
	assert.Equal(t, ComplexityEasy, EnsureMinComplexity(ComplexityEasy, ComplexityLevel("")))
}

func TestBotRoutingContext_HasSkill(t *testing.T) {
	botCtx := &BotRoutingContext{InstalledSkills: []string{"web-search", "code-runner"}}
	assert.True(t, botCtx.HasSkill("web-search"))
	assert.False(t, botCtx.HasSkill("vision"))

	empty := &BotRoutingContext{}
	assert.False(t, empty.HasSkill("web-search"))
}
