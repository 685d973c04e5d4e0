package dispatch

// This file contains the binary encoding of messages, used where they are
// persisted or queued as opaque payloads.

import (
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/kyrelle/gridmud/internal/interp"
)

// payload discriminator values for the encoded form.
const (
	payloadNone = iota
	payloadAction
	payloadCommand
)

func (m Message) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(string(m.Category))...)

	switch {
	case m.Action != nil:
		data = append(data, rezi.EncInt(payloadAction)...)
		data = append(data, rezi.EncBinary(*m.Action)...)
	case m.Command != nil:
		data = append(data, rezi.EncInt(payloadCommand)...)
		data = append(data, rezi.EncBinary(*m.Command)...)
	default:
		data = append(data, rezi.EncInt(payloadNone)...)
	}

	data = append(data, rezi.EncInt(int(m.Version))...)

	return data, nil
}

func (m *Message) UnmarshalBinary(data []byte) error {
	var err error
	var bytesRead int

	var cat string
	cat, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	data = data[bytesRead:]
	m.Category = Category(cat)

	var payload int
	payload, bytesRead, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("payload type: %w", err)
	}
	data = data[bytesRead:]

	m.Action = nil
	m.Command = nil
	switch payload {
	case payloadAction:
		var act interp.ResolvedAction
		bytesRead, err = rezi.DecBinary(data, &act)
		if err != nil {
			return fmt.Errorf("action: %w", err)
		}
		data = data[bytesRead:]
		m.Action = &act
	case payloadCommand:
		var cmd interp.ResolvedCommand
		bytesRead, err = rezi.DecBinary(data, &cmd)
		if err != nil {
			return fmt.Errorf("command: %w", err)
		}
		data = data[bytesRead:]
		m.Command = &cmd
	case payloadNone:
		// nothing further to decode
	default:
		return fmt.Errorf("unknown payload type %d", payload)
	}

	var version int
	version, _, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	m.Version = uint64(version)

	return nil
}
