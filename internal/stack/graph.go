package stack

import (
	"fmt"

	"minecraft-server-lab/internal/dag"
)

// Graph is the deployment as explicit resource nodes and dependency edges.
type Graph struct {
	resources map[string]Resource
	deps      *dag.Graph
	order     []string
}

// NewGraph indexes resources by logical ID, wires an edge for every
// declared dependency and fixes the topological order. Duplicate IDs,
// dangling references and cycles are errors.
func NewGraph(resources ...Resource) (*Graph, error) {
	g := &Graph{
		resources: make(map[string]Resource, len(resources)),
		deps:      dag.New(),
	}

	for _, r := range resources {
		id := r.LogicalID()
		if id == "" {
			return nil, fmt.Errorf("%w: resource %T has no logical id", ErrInvalidGraph, r)
		}
		if _, ok := g.resources[id]; ok {
			return nil, fmt.Errorf("%w: duplicate logical id %s", ErrInvalidGraph, id)
		}
		g.resources[id] = r
		g.deps.AddNode(id)
	}

	for _, r := range resources {
		for _, dep := range r.Dependencies() {
			if !g.deps.Has(dep) {
				return nil, fmt.Errorf("%w: %s references unknown resource %q", ErrInvalidGraph, r.LogicalID(), dep)
			}
			if err := g.deps.AddEdge(dep, r.LogicalID()); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
			}
		}
	}

	order, err := g.deps.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	g.order = order

	return g, nil
}

// Order returns logical IDs with every resource after its dependencies.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Resource looks up a node by logical ID.
func (g *Graph) Resource(id string) (Resource, bool) {
	r, ok := g.resources[id]
	return r, ok
}

// Resources returns every node in topological order.
func (g *Graph) Resources() []Resource {
	out := make([]Resource, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.resources[id])
	}
	return out
}

// Dependencies returns the sorted logical IDs that id depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	return g.deps.Dependencies(id)
}

// Validate checks the cross-resource invariants: networks are well formed,
// an instance sits in the same network as its firewall and that network
// offers the requested subnet type, and outputs reference a known
// attribute of an instance.
func (g *Graph) Validate() error {
	for _, r := range g.Resources() {
		switch res := r.(type) {
		case *Network:
			if err := res.Validate(); err != nil {
				return err
			}
		case *FirewallRuleSet:
			if _, err := lookup[*Network](g, res.NetworkID); err != nil {
				return fmt.Errorf("firewall %s: %w", res.ID, err)
			}
		case *ComputeInstance:
			if err := g.validateInstance(res); err != nil {
				return err
			}
		case *OutputValue:
			if _, err := lookup[*ComputeInstance](g, res.Value.ResourceID); err != nil {
				return fmt.Errorf("output %s: %w", res.Name, err)
			}
			if res.Value.Attribute != AttrPublicIP {
				return fmt.Errorf("%w: output %s references unknown attribute %q", ErrInvalidGraph, res.Name, res.Value.Attribute)
			}
			if res.Description == "" {
				return fmt.Errorf("%w: output %s has no description", ErrInvalidGraph, res.Name)
			}
		}
	}
	return nil
}

func (g *Graph) validateInstance(inst *ComputeInstance) error {
	network, err := lookup[*Network](g, inst.NetworkID)
	if err != nil {
		return fmt.Errorf("instance %s: %w", inst.ID, err)
	}
	firewall, err := lookup[*FirewallRuleSet](g, inst.FirewallID)
	if err != nil {
		return fmt.Errorf("instance %s: %w", inst.ID, err)
	}
	if firewall.NetworkID != inst.NetworkID {
		return fmt.Errorf("%w: instance %s is in network %s but firewall %s belongs to %s",
			ErrInvalidGraph, inst.ID, inst.NetworkID, firewall.ID, firewall.NetworkID)
	}
	if !network.HasSubnetType(inst.SubnetType) {
		return fmt.Errorf("%w: network %s has no %s subnet for instance %s", ErrInvalidGraph, network.ID, inst.SubnetType, inst.ID)
	}
	if inst.InstanceType == "" {
		return fmt.Errorf("%w: instance %s has no instance type", ErrInvalidGraph, inst.ID)
	}
	return nil
}

func lookup[T Resource](g *Graph, id string) (T, error) {
	var zero T
	r, ok := g.resources[id]
	if !ok {
		return zero, fmt.Errorf("%w: unknown resource %q", ErrInvalidGraph, id)
	}
	typed, ok := r.(T)
	if !ok {
		return zero, fmt.Errorf("%w: resource %q is a %T, want %T", ErrInvalidGraph, id, r, zero)
	}
	return typed, nil
}
