package loader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowgrid/internal/workflow"
)

// fileRoot decodes the top-level blocks of a workflow file.
type fileRoot struct {
	Workflows []*workflowBlock `hcl:"workflow,block"`
}

type workflowBlock struct {
	Name  string       `hcl:"name,label"`
	Nodes []*nodeBlock `hcl:"node,block"`
	Edges []*edgeBlock `hcl:"edge,block"`
}

type nodeBlock struct {
	ID     string       `hcl:"id,label"`
	Type   string       `hcl:"type"`
	Config *configBlock `hcl:"config,block"`
}

// configBlock keeps the config body undecoded; node configurations are
// schemaless at this layer and validated by the node type's executor.
type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type edgeBlock struct {
	ID     string `hcl:"id,label"`
	Source string `hcl:"source"`
	Target string `hcl:"target"`
}

// LoadHCL parses one HCL workflow file. The file must declare exactly one
// workflow block.
func LoadHCL(ctx context.Context, path string) (*workflow.Workflow, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if len(root.Workflows) != 1 {
		return nil, fmt.Errorf("workflow file %s must declare exactly one workflow block, found %d", path, len(root.Workflows))
	}

	block := root.Workflows[0]
	wf := &workflow.Workflow{Name: block.Name}

	for _, nb := range block.Nodes {
		config, err := decodeConfig(nb.Config)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nb.ID, err)
		}
		wf.Nodes = append(wf.Nodes, workflow.Node{ID: nb.ID, Type: nb.Type, Config: config})
	}
	for _, eb := range block.Edges {
		wf.Edges = append(wf.Edges, workflow.Edge{ID: eb.ID, Source: eb.Source, Target: eb.Target})
	}
	return wf, nil
}

// decodeConfig evaluates every attribute of a config block into native Go
// values. Expressions are evaluated without a variable scope; template
// placeholders stay plain strings and resolve later against the run context.
func decodeConfig(block *configBlock) (map[string]any, error) {
	if block == nil {
		return map[string]any{}, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid config block: %w", diags)
	}

	config := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("config attribute %q: %w", name, err)
		}
		config[name] = native
	}
	return config, nil
}

// ctyToNative converts a cty value into the plain Go shapes the rest of the
// system works with: string, float64, bool, []any and map[string]any.
func ctyToNative(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("unknown value cannot be converted")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out[key.AsString()] = native
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
