package service

import (
	"mathdojo_backend/internal/config"
	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService covers both account shapes: parents with email and password,
// kids with a short numeric PIN scoped under their parent. Both credential
// kinds are stored as bcrypt hashes.
type AuthService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
	Cfg          *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		Cfg:          cfg,
	}
}

// RegisterParent creates a parent account. The email must be unused.
func (s *AuthService) RegisterParent(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	user.Role = model.Parent
	return s.UserRepo.Create(user)
}

// RegisterKid creates a kid account under a parent, keyed by display name
// and guarded by a PIN. A fresh kid starts with the day-one progress rows.
func (s *AuthService) RegisterKid(parentID uint, name, pin string) (*model.User, error) {
	_, err := s.UserRepo.FindKidByName(parentID, name)
	if err == nil {
		return nil, util.ErrNameTaken
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	kid := &model.User{
		Name:     name,
		Password: string(hashed),
		Role:     model.Kid,
		ParentID: &parentID,
	}
	if err := s.UserRepo.Create(kid); err != nil {
		return nil, err
	}
	if err := s.ProgressRepo.InitDefault(kid.ID); err != nil {
		return nil, err
	}
	return kid, nil
}

// LoginParent checks email and password and issues a token.
func (s *AuthService) LoginParent(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrInvalidCredential
	}
	if user.Role != model.Parent && user.Role != model.Admin {
		return "", nil, util.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredential
	}
	if user.Disabled {
		return "", nil, util.ErrPermissionDenied
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastSeen(user.ID); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginKid checks the kid's PIN under the parent identified by email and
// issues a token. Lookup failures and bad PINs are indistinguishable.
func (s *AuthService) LoginKid(parentEmail, name, pin string) (string, *model.User, error) {
	parent, err := s.UserRepo.FindByEmail(parentEmail)
	if err != nil || parent.Role != model.Parent {
		return "", nil, util.ErrInvalidCredential
	}
	kid, err := s.UserRepo.FindKidByName(parent.ID, name)
	if err != nil {
		return "", nil, util.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(kid.Password), []byte(pin)); err != nil {
		return "", nil, util.ErrInvalidCredential
	}
	if kid.Disabled {
		return "", nil, util.ErrPermissionDenied
	}

	token, err := util.GenerateJWT(kid, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastSeen(kid.ID); err != nil {
		return "", nil, err
	}
	return token, kid, nil
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
