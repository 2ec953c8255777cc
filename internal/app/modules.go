package app

import (
	"github.com/vk/flowgrid/internal/inference"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/modules/condition"
	"github.com/vk/flowgrid/modules/delay"
	"github.com/vk/flowgrid/modules/httprequest"
	"github.com/vk/flowgrid/modules/input"
	"github.com/vk/flowgrid/modules/modelcall"
	"github.com/vk/flowgrid/modules/output"
	"github.com/vk/flowgrid/modules/print"
	"github.com/vk/flowgrid/modules/transform"
)

// coreModules is the definitive list of node type modules compiled into the
// flowgrid binary. The inference client is shared by every model_call node.
func coreModules(client inference.Client) []registry.Module {
	return []registry.Module{
		&input.Module{},
		&output.Module{},
		&condition.Module{},
		&transform.Module{},
		&modelcall.Module{Client: client},
		&httprequest.Module{},
		&delay.Module{},
		&print.Module{},
	}
}
