package interp

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_ResolvedAction_binaryRoundTrip(t *testing.T) {
	assert := assert.New(t)

	original := ResolvedAction{
		Verb:        "attack",
		Handler:     "combat",
		Adverbs:     []string{"quickly", "slowly"},
		Object:      uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Preposition: "with",
		Object2:     uuid.MustParse("66666666-7777-8888-9999-aaaaaaaaaaaa"),
		Version:     42,
	}

	data, err := original.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	var decoded ResolvedAction
	err = decoded.UnmarshalBinary(data)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(original, decoded)
}

func Test_ResolvedCommand_binaryRoundTrip(t *testing.T) {
	assert := assert.New(t)

	original := ResolvedCommand{
		Name:    "help",
		Handler: "session",
		Topic:   "combat",
		Version: 7,
	}

	data, err := original.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	var decoded ResolvedCommand
	err = decoded.UnmarshalBinary(data)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(original, decoded)
}
