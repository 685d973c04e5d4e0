package dispatch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kyrelle/gridmud/internal/interp"
	"github.com/stretchr/testify/assert"
)

func Test_Dispatch(t *testing.T) {
	testCases := []struct {
		name       string
		resolved   interp.Resolved
		expectCat  Category
		expectErr  bool
		expectWhat string
	}{
		{
			name: "action to combat",
			resolved: interp.ResolvedAction{
				Verb:    "attack",
				Handler: "combat",
				Object:  uuid.MustParse("11111111-2222-3333-4444-555555555555"),
				Version: 3,
			},
			expectCat:  Combat,
			expectWhat: "action",
		},
		{
			name: "command to session",
			resolved: interp.ResolvedCommand{
				Name:    "help",
				Handler: "session",
				Topic:   "combat",
				Version: 3,
			},
			expectCat:  Session,
			expectWhat: "command",
		},
		{
			name: "unknown handler tag",
			resolved: interp.ResolvedAction{
				Verb:    "attack",
				Handler: "florbit",
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			msg, err := Dispatch(tc.resolved)

			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.expectCat, msg.Category)
			assert.Equal(uint64(3), msg.Version)

			switch tc.expectWhat {
			case "action":
				assert.NotNil(msg.Action)
				assert.Nil(msg.Command)
			case "command":
				assert.NotNil(msg.Command)
				assert.Nil(msg.Action)
			}
		})
	}
}
