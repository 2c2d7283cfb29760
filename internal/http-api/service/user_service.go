package service

import (
	"strings"

	"reviewdb/internal/http-api/dto"
	"reviewdb/internal/http-api/models"
	"reviewdb/internal/http-api/repository"
)

type UserService interface {
	CreateUser(req dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByUsername(username string) (*dto.UserResponse, error)
	UpdateUser(username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(username string) error
	ListUsers(search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
	GetProfile(userID string) (*dto.UserResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// CreateUser is the admin-side creation path: any role may be assigned and
// no confirmation code is involved.
func (s *userService) CreateUser(req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailInUse
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:  req.Username,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(user); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) GetByUsername(username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateUser is the privileged PATCH: it may change the role.
func (s *userService) UpdateUser(username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		user.Role = models.Role(*req.Role)
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) DeleteUser(username string) error {
	if err := s.userRepo.Delete(username); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) ListUsers(search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.List(search, page, pageSize)
	if err != nil {
		return nil, err
	}

	userResponses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		userResponses = append(userResponses, *dto.FromModelToUserResponse(&users[i]))
	}

	return dto.NewPaginatedUserResponse(userResponses, int(total), page, pageSize), nil
}

func (s *userService) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateProfile is the self-service PATCH: the request type carries no role
// field, so the role stays read-only for non-privileged callers.
func (s *userService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}
