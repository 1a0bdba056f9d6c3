package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       *UserDTO   `json:"owner,omitempty"`
}

// ProjectMemberDTO represents a member of a project
type ProjectMemberDTO struct {
	User     UserDTO   `json:"user"`
	JoinedAt time.Time `json:"joined_at"`
}

// ProjectDetailDTO represents a project together with its members
type ProjectDetailDTO struct {
	ProjectDTO
	Members []ProjectMemberDTO `json:"members"`
}

// ProjectDeletedEvent is pushed to a project's topic once it is gone
type ProjectDeletedEvent struct {
	ProjectID uuid.UUID `json:"projectId"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Version:     project.Version,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
		Owner:       toUserRef(project.Owner),
	}
}

func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	members := make([]ProjectMemberDTO, 0, len(project.Members))
	for _, m := range project.Members {
		members = append(members, ProjectMemberDTO{
			User:     ToUserDTO(m.User),
			JoinedAt: m.JoinedAt,
		})
	}
	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    members,
	}
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	result := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		result = append(result, ToProjectDTO(p))
	}
	return result
}
