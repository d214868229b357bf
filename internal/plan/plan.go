// Package plan loads declarative crawl plans from HCL files. A plan is a
// flat list of task blocks — page collection, analysis, report steps — with
// priorities, retry budgets and dependency edges, which the caller submits
// to the scheduling engine in dependency order.
package plan

import "fmt"

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	// Kind groups tasks by what they do (e.g. "collect", "analyze",
	// "report"). Together with Name it forms the task's plan-local id.
	Kind string
	// Name is the instance name within the kind.
	Name string

	// Command is an argv to execute. Exactly one of Command and URL must be
	// set.
	Command []string
	// URL marks the task as a page-fetch unit handled by the fetch
	// collaborator.
	URL string

	Priority   int
	MaxRetries int
	// DependsOn lists plan-local ids ("kind.name") of tasks that must
	// complete first.
	DependsOn []string
}

// ID returns the task's plan-local identifier.
func (t *Task) ID() string {
	return fmt.Sprintf("%s.%s", t.Kind, t.Name)
}

// Plan is the root container for all tasks loaded from a plan file.
type Plan struct {
	Tasks []*Task
}

// Validate checks structural rules that do not require the scheduler:
// unique ids, known dependency references, and exactly one work form per
// task.
func (p *Plan) Validate() error {
	seen := make(map[string]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		id := t.ID()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate task %q in plan", id)
		}
		seen[id] = struct{}{}

		hasCommand := len(t.Command) > 0
		hasURL := t.URL != ""
		if hasCommand == hasURL {
			return fmt.Errorf("task %q must set exactly one of 'command' and 'url'", id)
		}
	}
	for _, t := range p.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", t.ID(), dep)
			}
		}
	}
	return nil
}

// Ordered returns the plan's tasks topologically sorted by their
// depends_on edges, so every task follows all of its dependencies. Ties are
// broken by declaration order. A cycle is an error.
func (p *Plan) Ordered() ([]*Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(p.Tasks))
	dependents := make(map[string][]*Task, len(p.Tasks))
	for _, t := range p.Tasks {
		indegree[t.ID()] = len(t.DependsOn)
		for _, dep := range t.DependsOn {
			dependents[dep] = append(dependents[dep], t)
		}
	}

	// Kahn's algorithm over declaration order.
	var queue []*Task
	for _, t := range p.Tasks {
		if indegree[t.ID()] == 0 {
			queue = append(queue, t)
		}
	}

	ordered := make([]*Task, 0, len(p.Tasks))
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		ordered = append(ordered, t)
		for _, dep := range dependents[t.ID()] {
			indegree[dep.ID()]--
			if indegree[dep.ID()] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(ordered) != len(p.Tasks) {
		var stuck []string
		for id, n := range indegree {
			if n > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("dependency cycle in plan involving: %v", stuck)
	}
	return ordered, nil
}
