package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeArgsCodexWithModel(t *testing.T) {
	got := shapeArgs("codex", []string{"-x"}, "gpt-5.2")
	assert.Equal(t, []string{"-c", "check_for_update_on_startup=false", "--model", "gpt-5.2", "-x"}, got)
}

func TestShapeArgsDoesNotReinjectExistingModel(t *testing.T) {
	got := shapeArgs("codex", []string{"--model=other"}, "gpt-5.2")
	assert.Equal(t, []string{"-c", "check_for_update_on_startup=false", "--model=other"}, got)
}

func TestShapeArgsIdentityWithoutModelOnNonDefaultCLI(t *testing.T) {
	got := shapeArgs("claude", []string{"-p", "hello"}, "")
	assert.Equal(t, []string{"-p", "hello"}, got)
}

func TestShapeArgsNonModelCLIIgnoresModel(t *testing.T) {
	got := shapeArgs("some-unknown-cli", []string{"-x"}, "gpt-5.2")
	assert.Equal(t, []string{"-x"}, got)
}

func TestShapeArgsVariantSuffixAndCaseInsensitive(t *testing.T) {
	got := shapeArgs("Claude:Sonnet", []string{"-x"}, "gpt-5.2")
	assert.Equal(t, []string{"--model", "gpt-5.2", "-x"}, got)
}

func TestShapeArgsIdempotent(t *testing.T) {
	first := shapeArgs("codex", []string{"-x"}, "gpt-5.2")
	second := shapeArgs("codex", first, "gpt-5.2")
	assert.Equal(t, first, second)
}
