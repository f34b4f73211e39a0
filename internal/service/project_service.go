package service

import (
	"context"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// ProjectService manages projects. Only the owner may update or delete.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
}

// ProjectListQuery filters and orders project listing.
type ProjectListQuery struct {
	Search        *string
	SortField     string
	SortDirection string
}

// projectSortChains maps each sortable field to the keys that follow it.
var projectSortChains = map[repository.SortField][]repository.SortKey{
	repository.SortFieldName:      {repository.Asc(repository.SortFieldID)},
	repository.SortFieldCreatedAt: {repository.Asc(repository.SortFieldID)},
	repository.SortFieldUpdatedAt: {repository.Desc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)},
	repository.SortFieldID:        {},
}

// NewProjectService constructs the service.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository) *ProjectService {
	return &ProjectService{projects: projects, users: users}
}

// CreateProject creates a project owned by actor.
func (s *ProjectService) CreateProject(ctx context.Context, actor domain.Principal, name string) (*domain.Project, error) {
	owner, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	project := &domain.Project{Name: name, OwnerID: owner.ID}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	project.OwnerName = owner.Name
	return project, nil
}

// GetProject returns one project.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Project", id)
	}
	return project, nil
}

// ListProjects returns matching projects. Names are matched after trimming
// the search text.
func (s *ProjectService) ListProjects(ctx context.Context, query ProjectListQuery) ([]domain.Project, error) {
	field := repository.SortField(query.SortField)
	if field == "" {
		field = repository.SortFieldName
	}
	tail, ok := projectSortChains[field]
	if !ok {
		return nil, apperrors.NewValidationError("unsupported sort field", map[string]any{"sort": query.SortField})
	}
	primary := repository.SortKey{Field: field, Descending: strings.EqualFold(query.SortDirection, "desc")}
	return s.projects.List(ctx, repository.ProjectFilter{
		SearchTerm: query.Search,
		Sort:       append([]repository.SortKey{primary}, tail...),
	})
}

// UpdateProject renames a project.
func (s *ProjectService) UpdateProject(ctx context.Context, actor domain.Principal, id int64, name string) (*domain.Project, error) {
	project, err := s.ownedProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	project.Name = name
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, notFound(err, "Project", id)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project and its issues.
func (s *ProjectService) DeleteProject(ctx context.Context, actor domain.Principal, id int64) error {
	if _, err := s.ownedProject(ctx, actor, id); err != nil {
		return err
	}
	return notFound(s.projects.Delete(ctx, id), "Project", id)
}

func (s *ProjectService) ownedProject(ctx context.Context, actor domain.Principal, id int64) (*domain.Project, error) {
	if _, err := resolveActor(ctx, s.users, actor); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Project", id)
	}
	if project.OwnerID != actor.UserID {
		return nil, apperrors.NewForbidden("only the project owner can modify this project")
	}
	return project, nil
}
