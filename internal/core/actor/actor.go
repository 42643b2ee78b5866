package actor

import (
	"github.com/google/uuid"
)

// Actor is anything a behavior instance can control: a pawn, a vehicle,
// a turret. Behavior blackboards hold an Actor under the reserved self
// key.
type Actor interface {
	ID() string
	Name() string
}

// Authority answers whether this process is allowed to mutate
// simulation-affecting state for an actor. In a client-server replicated
// simulation only the server side has authority.
type Authority interface {
	HasAuthority() bool
}

// Role is the replication role of a locally held actor.
type Role uint8

const (
	// RoleSimulatedProxy is a replica driven by a remote authority.
	RoleSimulatedProxy Role = iota
	// RoleAutonomousProxy is a locally controlled replica (player input).
	RoleAutonomousProxy
	// RoleAuthority owns the actor and may mutate its state.
	RoleAuthority
)

func (r Role) String() string {
	switch r {
	case RoleSimulatedProxy:
		return "SimulatedProxy"
	case RoleAutonomousProxy:
		return "AutonomousProxy"
	case RoleAuthority:
		return "Authority"
	default:
		return "Invalid"
	}
}

// Pawn is a basic concrete Actor.
type Pawn struct {
	id   string
	name string
}

func NewPawn(name string) *Pawn {
	return &Pawn{id: uuid.NewString(), name: name}
}

func (p *Pawn) ID() string   { return p.id }
func (p *Pawn) Name() string { return p.name }

var _ Actor = (*Pawn)(nil)

// Controller owns a pawn and carries the local replication role. It is
// the owner object behavior managers attach to.
type Controller struct {
	id   string
	name string
	pawn Actor
	role Role
}

func NewController(name string, pawn Actor, role Role) *Controller {
	return &Controller{id: uuid.NewString(), name: name, pawn: pawn, role: role}
}

func (c *Controller) ID() string   { return c.id }
func (c *Controller) Name() string { return c.name }

// Pawn returns the controlled actor, or nil when the controller is not
// possessing one.
func (c *Controller) Pawn() Actor { return c.pawn }

// Possess attaches a pawn to the controller.
func (c *Controller) Possess(pawn Actor) { c.pawn = pawn }

func (c *Controller) Role() Role { return c.role }

func (c *Controller) HasAuthority() bool { return c.role == RoleAuthority }

var (
	_ Actor     = (*Controller)(nil)
	_ Authority = (*Controller)(nil)
)
