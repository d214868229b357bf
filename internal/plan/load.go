package plan

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/hazlamahedich/summit-seo-sub001/internal/ctxlog"
)

// hclTask is the HCL-specific schema for a `task` block. Priority and
// retries are pointers so the defaults block can tell "absent" from "zero".
type hclTask struct {
	Kind       string   `hcl:"kind,label"`
	Name       string   `hcl:"name,label"`
	Command    []string `hcl:"command,optional"`
	URL        string   `hcl:"url,optional"`
	Priority   *int     `hcl:"priority,optional"`
	MaxRetries *int     `hcl:"max_retries,optional"`
	DependsOn  []string `hcl:"depends_on,optional"`
}

// hclDefaults carries the raw body of the optional `defaults` block; its
// attributes are evaluated lazily so unknown keys can be reported by name.
type hclDefaults struct {
	Body hcl.Body `hcl:",remain"`
}

// hclPlanFile represents the top-level structure of a plan file.
type hclPlanFile struct {
	Defaults *hclDefaults `hcl:"defaults,block"`
	Tasks    []*hclTask   `hcl:"task,block"`
}

// planDefaults holds evaluated values from the defaults block.
type planDefaults struct {
	priority   int
	maxRetries int
}

// Load parses a single HCL plan file into a validated Plan.
func Load(ctx context.Context, path string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading plan file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, diags)
	}

	var parsed hclPlanFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode plan file %s: %w", path, diags)
	}

	defaults, err := decodeDefaults(parsed.Defaults)
	if err != nil {
		return nil, fmt.Errorf("invalid defaults block in %s: %w", path, err)
	}

	p := &Plan{Tasks: make([]*Task, 0, len(parsed.Tasks))}
	for _, raw := range parsed.Tasks {
		t := &Task{
			Kind:       raw.Kind,
			Name:       raw.Name,
			Command:    raw.Command,
			URL:        raw.URL,
			Priority:   defaults.priority,
			MaxRetries: defaults.maxRetries,
			DependsOn:  raw.DependsOn,
		}
		if raw.Priority != nil {
			t.Priority = *raw.Priority
		}
		if raw.MaxRetries != nil {
			t.MaxRetries = *raw.MaxRetries
		}
		if t.MaxRetries < 0 {
			return nil, fmt.Errorf("task %q: max_retries must not be negative", t.ID())
		}
		p.Tasks = append(p.Tasks, t)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	logger.Debug("Plan loaded.", "tasks", len(p.Tasks))
	return p, nil
}

// decodeDefaults evaluates the attributes of the defaults block into
// concrete values. Only priority and max_retries are recognized.
func decodeDefaults(block *hclDefaults) (planDefaults, error) {
	d := planDefaults{}
	if block == nil {
		return d, nil
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return d, diags
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return d, diags
		}
		switch name {
		case "priority":
			if err := gocty.FromCtyValue(val, &d.priority); err != nil {
				return d, fmt.Errorf("priority: %w", err)
			}
		case "max_retries":
			if err := gocty.FromCtyValue(val, &d.maxRetries); err != nil {
				return d, fmt.Errorf("max_retries: %w", err)
			}
		default:
			return d, fmt.Errorf("unsupported default %q", name)
		}
	}
	return d, nil
}
