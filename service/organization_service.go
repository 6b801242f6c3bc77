// api/service/organization_service.go
package service

import (
	"context"

	"github.com/atlasgrc/atlas/api/model"
)

// IOrganizationService is the read surface over mirrored tenant documents.
type IOrganizationService interface {
	GetOrganization(ctx context.Context, orgID string) (*model.Organization, error)
	ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error)
	SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error)
	ListMembers(ctx context.Context, orgID string) ([]model.OrgMember, error)
}

// OrganizationLister is the DAO slice backing the listing endpoints.
type OrganizationLister interface {
	ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error)
	SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error)
}

type OrganizationService struct {
	orgStore OrganizationStore
	lister   OrganizationLister
}

var _ IOrganizationService = &OrganizationService{}

func NewOrganizationService(orgStore OrganizationStore, lister OrganizationLister) *OrganizationService {
	return &OrganizationService{orgStore: orgStore, lister: lister}
}

func (s *OrganizationService) GetOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	org, err := s.orgStore.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	members, err := s.orgStore.ListMembers(ctx, orgID)
	if err == nil {
		org.Members = members
	}
	return org, nil
}

func (s *OrganizationService) ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.lister.ListOrganizations(ctx, limit, offset)
}

func (s *OrganizationService) SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error) {
	if criteria.Limit <= 0 {
		criteria.Limit = 10
	}
	return s.lister.SearchOrganizations(ctx, criteria)
}

func (s *OrganizationService) ListMembers(ctx context.Context, orgID string) ([]model.OrgMember, error) {
	return s.orgStore.ListMembers(ctx, orgID)
}
