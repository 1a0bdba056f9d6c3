package services

import (
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
)

var (
	ErrUserNotFound         = apierrors.New(apierrors.KindNotFound, "User not found")
	ErrProjectNotFound      = apierrors.New(apierrors.KindNotFound, "Project not found")
	ErrTaskNotFound         = apierrors.New(apierrors.KindNotFound, "Task not found")
	ErrNotificationNotFound = apierrors.New(apierrors.KindNotFound, "Notification not found")

	ErrNameRequired        = apierrors.New(apierrors.KindValidation, "name is required")
	ErrEmailRequired       = apierrors.New(apierrors.KindValidation, "email is required")
	ErrInvalidEmail        = apierrors.New(apierrors.KindValidation, "email is invalid")
	ErrPasswordTooShort    = apierrors.New(apierrors.KindValidation, "password too short")
	ErrInvalidRole         = apierrors.New(apierrors.KindValidation, "role must be TeamLeader or TeamMember")
	ErrTitleRequired       = apierrors.New(apierrors.KindValidation, "title is required")
	ErrTitleEmpty          = apierrors.New(apierrors.KindValidation, "title cannot be empty")
	ErrInvalidStatus       = apierrors.New(apierrors.KindValidation, "invalid task status")
	ErrInvalidPriority     = apierrors.New(apierrors.KindValidation, "invalid task priority")
	ErrInvalidDateRange    = apierrors.New(apierrors.KindValidation, "end date must not be before start date")
	ErrAssigneeNotMember   = apierrors.New(apierrors.KindValidation, "assignee must be a member of the project")
	ErrCommentTextRequired = apierrors.New(apierrors.KindValidation, "comment text is required")
	ErrSuggestTextRequired = apierrors.New(apierrors.KindValidation, "text is required")
	ErrAINoTasksGenerated  = apierrors.New(apierrors.KindValidation, "AI did not generate any tasks")
	ErrAINoValidTasks      = apierrors.New(apierrors.KindValidation, "no valid tasks could be created from AI output")
	ErrAITooManyTasks      = apierrors.New(apierrors.KindValidation, "AI generated too many tasks")

	ErrEmailTaken        = apierrors.New(apierrors.KindConflict, "email already registered")
	ErrAlreadyMember     = apierrors.New(apierrors.KindConflict, "User is already a member of this project")
	ErrNotMember         = apierrors.New(apierrors.KindConflict, "User is not a member of this project")
	ErrCannotRemoveOwner = apierrors.New(apierrors.KindConflict, "The project owner cannot be removed")
	ErrVersionConflict   = apierrors.New(apierrors.KindConflict, "The resource was modified by someone else; reload and retry")

	ErrInvalidCredentials = apierrors.New(apierrors.KindUnauthorized, "invalid email or password")
	ErrInvalidToken       = apierrors.New(apierrors.KindUnauthorized, "invalid or expired token")

	ErrAIServiceNotConfigured = apierrors.New(apierrors.KindUnavailable, "AI service is not configured")
)
