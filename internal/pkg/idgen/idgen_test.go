package idgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grimforge/initiative-api/internal/pkg/idgen"
)

func TestPrefixedGeneratorFormat(t *testing.T) {
	gen := idgen.NewPrefixed("combatant")

	id := gen.Generate()
	assert.True(t, strings.HasPrefix(id, "combatant_"))

	// Timestamp plus random suffix keeps consecutive IDs distinct
	assert.NotEqual(t, id, gen.Generate())
}

func TestSequentialGeneratorIsDeterministic(t *testing.T) {
	gen := idgen.NewSequential("combatant")

	assert.Equal(t, "combatant_1", gen.Generate())
	assert.Equal(t, "combatant_2", gen.Generate())
	assert.Equal(t, "combatant_3", gen.Generate())
}

func TestSequentialGeneratorWithoutPrefix(t *testing.T) {
	gen := idgen.NewSequential("")

	assert.Equal(t, "1", gen.Generate())
}

func TestUUIDGenerator(t *testing.T) {
	gen := idgen.NewUUID("campaign")

	id := gen.Generate()
	assert.True(t, strings.HasPrefix(id, "campaign_"))
	assert.NotEqual(t, id, gen.Generate())
}
