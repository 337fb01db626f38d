package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var ErrCannotDisableSelf = errors.New("不能停用自己的账号")

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile 获取用户详情
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return buildUserInfo(user), nil
}

// UpdateProfile 更新个人信息，可改邮箱、姓名和密码
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 检查邮箱是否已被占用
	if req.Email != nil && (user.Email == nil || *req.Email != *user.Email) {
		exists, err := s.userRepo.ExistsByEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		user.Email = req.Email
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return buildUserInfo(user), nil
}

// ListUsers 管理员查看用户列表
func (s *UserService) ListUsers(page, pageSize int) ([]*dto.UserInfo, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*dto.UserInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, buildUserInfo(user))
	}

	return infos, total, nil
}

// UpdateRole 管理员调整用户角色
func (s *UserService) UpdateRole(userID int64, role string) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return buildUserInfo(user), nil
}

// SetActive 管理员启用或停用账号，不能停用自己
func (s *UserService) SetActive(operatorID, userID int64, active bool) (*dto.UserInfo, error) {
	if !active && operatorID == userID {
		return nil, ErrCannotDisableSelf
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"is_active": active,
	}); err != nil {
		return nil, err
	}

	user.IsActive = active
	return buildUserInfo(user), nil
}
