//go:build mage

package main

import (
	"fmt"

	"github.com/pdiddy/compound-engine/internal/nlp"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// Model downloads the entity-recognition model into models/ so the first
// serve --nlp run does not block on the download.
func Model() error {
	path, err := nlp.PrepareModel(types.NLPConfig{})
	if err != nil {
		return err
	}
	fmt.Printf("Model ready at %s\n", path)
	return nil
}
