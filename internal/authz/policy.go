// Package authz decides whether an acting user may perform an operation on
// a project or one of its tasks. It is pure: callers resolve the project's
// owner and members before asking.
package authz

import (
	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
)

type Operation string

const (
	OpProjectCreate Operation = "project.create"
	OpProjectRead   Operation = "project.read"
	OpProjectUpdate Operation = "project.update"
	OpProjectDelete Operation = "project.delete"
	OpMemberAdd     Operation = "member.add"
	OpMemberRemove  Operation = "member.remove"
	OpTaskCreate    Operation = "task.create"
	OpTaskRead      Operation = "task.read"
	OpTaskUpdate    Operation = "task.update"
	OpTaskDelete    Operation = "task.delete"
	OpCommentCreate Operation = "comment.create"
	OpCommentRead   Operation = "comment.read"
	OpActivityRead  Operation = "activity.read"
	OpTopicJoin     Operation = "topic.join"
)

// Standing is a set of relations an actor holds towards a project.
type Standing uint8

const (
	StandingMember Standing = 1 << iota
	StandingLeader
	StandingOwner
	StandingAdmin
)

// Has reports whether s includes every relation in other.
func (s Standing) Has(other Standing) bool {
	return s&other == other
}

type capability struct {
	allowed Standing
	// scoped operations need a resolved project; a missing one is not found
	scoped bool
	denial string
}

// capabilities is the single place where role precedence is declared.
// Admin is granted everything before this table is consulted. The
// TeamLeader role only widens membership management; reading and
// collaborating inside a project still requires belonging to it.
var capabilities = map[Operation]capability{
	OpProjectCreate: {allowed: StandingLeader, denial: "Only Admins and Team Leaders can create projects"},
	OpProjectRead:   {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpProjectUpdate: {allowed: StandingOwner, scoped: true, denial: "Only the project owner can update this project"},
	OpProjectDelete: {allowed: StandingOwner, scoped: true, denial: "Only the project owner can delete this project"},
	OpMemberAdd:     {allowed: StandingOwner | StandingLeader, scoped: true, denial: "Only the owner, Admins, or Team Leaders can add members"},
	OpMemberRemove:  {allowed: StandingOwner | StandingLeader, scoped: true, denial: "Only the owner, Admins, or Team Leaders can remove members"},
	OpTaskCreate:    {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpTaskRead:      {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpTaskUpdate:    {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpTaskDelete:    {allowed: StandingOwner, scoped: true, denial: "Only the project owner or an Admin can delete tasks"},
	OpCommentCreate: {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpCommentRead:   {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpActivityRead:  {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
	OpTopicJoin:     {allowed: StandingOwner | StandingMember, scoped: true, denial: "You are not a member of this project"},
}

// Actor is the acting user as seen by the guard.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// ActorOf builds an Actor from a user record.
func ActorOf(user *models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

// Resource is a project with its owner and members resolved.
type Resource struct {
	OwnerID   uuid.UUID
	MemberIDs []uuid.UUID
}

// ForProject resolves a Resource from a project with preloaded members.
// A nil project yields a nil Resource.
func ForProject(project *models.Project) *Resource {
	if project == nil {
		return nil
	}
	return &Resource{OwnerID: project.OwnerID, MemberIDs: project.MemberIDs()}
}

// StandingOf computes every relation actor holds towards res.
func StandingOf(actor Actor, res *Resource) Standing {
	var s Standing
	if actor.Role == models.RoleAdmin {
		s |= StandingAdmin
	}
	if actor.Role == models.RoleTeamLeader {
		s |= StandingLeader
	}
	if res == nil {
		return s
	}
	if res.OwnerID == actor.ID {
		s |= StandingOwner
	}
	for _, id := range res.MemberIDs {
		if id == actor.ID {
			s |= StandingMember
			break
		}
	}
	return s
}

// Authorize evaluates op for actor on res. res may be nil for
// operations that are not project scoped.
func Authorize(actor Actor, op Operation, res *Resource) Decision {
	capa, ok := capabilities[op]
	if !ok {
		return Forbidden("Unknown operation")
	}
	if capa.scoped && res == nil {
		return NotFound()
	}

	standing := StandingOf(actor, res)
	if standing.Has(StandingAdmin) {
		return Allowed()
	}
	if standing&capa.allowed != 0 {
		return Allowed()
	}
	return Forbidden(capa.denial)
}
