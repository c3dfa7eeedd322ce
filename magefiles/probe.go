//go:build mage

package main

import (
	"context"
	"fmt"

	"github.com/pdiddy/compound-engine/internal/profile"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// Probe checks outbound connectivity the same way the fetch command does.
func Probe() error {
	if err := profile.CheckConnectivity(context.Background(), types.ProfileConfig{}); err != nil {
		return err
	}
	fmt.Println("Connectivity OK.")
	return nil
}
