// Package smarthome defines the port interface for the smart-home bridge.
package smarthome

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/home"
)

// Bridge is the port interface for device actions. One synchronous call per
// device action; the result reflects whether the device accepted it.
type Bridge interface {
	InvokeService(ctx context.Context, call home.ServiceCall) (home.Result, error)
}
