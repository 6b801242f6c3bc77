// api/service/user_service.go
package service

import (
	"context"

	"github.com/atlasgrc/atlas/api/model"
)

// IUserService is the read surface over mirrored user documents. Writes go
// through the sync pipeline only; there is no API for editing a mirror by
// hand.
type IUserService interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error)
}

// UserSearcher is the DAO slice backing the search endpoint.
type UserSearcher interface {
	SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error)
}

type UserService struct {
	userStore UserStore
	searcher  UserSearcher
}

var _ IUserService = &UserService{}

func NewUserService(userStore UserStore, searcher UserSearcher) *UserService {
	return &UserService{userStore: userStore, searcher: searcher}
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userStore.GetUser(ctx, userID)
}

func (s *UserService) SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error) {
	if criteria.Limit <= 0 {
		criteria.Limit = 10
	}
	return s.searcher.SearchUsers(ctx, criteria)
}
