package interp

// This file contains the binary encoding of resolved sentences, used where
// they are persisted or queued as opaque payloads.

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

func (ra ResolvedAction) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(ra.Verb)...)
	data = append(data, rezi.EncString(ra.Handler)...)
	data = append(data, rezi.EncInt(len(ra.Adverbs))...)
	for i := range ra.Adverbs {
		data = append(data, rezi.EncString(ra.Adverbs[i])...)
	}
	data = append(data, rezi.EncBinary(ra.Object)...)
	data = append(data, rezi.EncString(ra.Preposition)...)
	data = append(data, rezi.EncBinary(ra.Object2)...)
	data = append(data, rezi.EncInt(int(ra.Version))...)

	return data, nil
}

func (ra *ResolvedAction) UnmarshalBinary(data []byte) error {
	var err error
	var bytesRead int

	ra.Verb, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("verb: %w", err)
	}
	data = data[bytesRead:]

	ra.Handler, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("handler: %w", err)
	}
	data = data[bytesRead:]

	var advCount int
	advCount, bytesRead, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("adverb count: %w", err)
	}
	data = data[bytesRead:]

	ra.Adverbs = nil
	for i := 0; i < advCount; i++ {
		var adv string
		adv, bytesRead, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("adverb %d: %w", i, err)
		}
		data = data[bytesRead:]
		ra.Adverbs = append(ra.Adverbs, adv)
	}

	bytesRead, err = rezi.DecBinary(data, &ra.Object)
	if err != nil {
		return fmt.Errorf("object: %w", err)
	}
	data = data[bytesRead:]

	ra.Preposition, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("preposition: %w", err)
	}
	data = data[bytesRead:]

	bytesRead, err = rezi.DecBinary(data, &ra.Object2)
	if err != nil {
		return fmt.Errorf("second object: %w", err)
	}
	data = data[bytesRead:]

	var version int
	version, _, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	ra.Version = uint64(version)

	return nil
}

func (rc ResolvedCommand) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(rc.Name)...)
	data = append(data, rezi.EncString(rc.Handler)...)
	data = append(data, rezi.EncString(rc.Topic)...)
	data = append(data, rezi.EncInt(int(rc.Version))...)

	return data, nil
}

func (rc *ResolvedCommand) UnmarshalBinary(data []byte) error {
	var err error
	var bytesRead int

	rc.Name, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	data = data[bytesRead:]

	rc.Handler, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("handler: %w", err)
	}
	data = data[bytesRead:]

	rc.Topic, bytesRead, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("topic: %w", err)
	}
	data = data[bytesRead:]

	var version int
	version, _, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	rc.Version = uint64(version)

	return nil
}
