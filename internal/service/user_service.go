package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Storage:  storage,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// ListKids returns all kid accounts owned by a parent.
func (s *UserService) ListKids(parentID uint) ([]model.User, error) {
	return s.UserRepo.ListKids(parentID)
}

// UpdateProfile changes the display name, and for parents the email.
func (s *UserService) UpdateProfile(userID uint, name, email string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" && user.Role != model.Kid {
		user.Email = email
	}
	user.UpdatedAt = time.Now()

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePin replaces a kid's PIN. Only the kid's own parent may call this.
func (s *UserService) ChangePin(parentID, kidID uint, pin string) error {
	kid, err := s.GetUserByID(kidID)
	if err != nil {
		return err
	}
	if kid.Role != model.Kid || kid.ParentID == nil || *kid.ParentID != parentID {
		return util.ErrPermissionDenied
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	kid.Password = string(hashed)
	return s.UserRepo.Update(kid)
}

// UploadAvatar validates the file as an image, stores it and records its
// URL on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, header *multipart.FileHeader) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.New().String(), filepath.Ext(header.Filename))
	url, err := s.Storage.Upload(ctx, filename, file, header.Size, mimeType)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}
