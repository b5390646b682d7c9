package service

import (
	"context"
	"database/sql"
	"errors"
	"go-tube-api/logger"
	"go-tube-api/model"
	"go-tube-api/repository"
	"go-tube-api/storage"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrUserExists         = errors.New("user with this username or email already exists")
	ErrAvatarRequired     = errors.New("avatar file is required")
	ErrCoverImageRequired = errors.New("cover image file is required")
	ErrCreatedFetchFailed = errors.New("something went wrong while registering the user")
)

// UserService handles registration and profile mutations. Media uploads go
// through the MediaStorage collaborator; an avatar that fails to upload is
// fatal, a cover image is not.
type UserService struct {
	userRepo repository.IUserRepository
	media    storage.MediaStorage
	cache    ICacheClient
	auth     *AuthService
}

func NewUserService(userRepo repository.IUserRepository, media storage.MediaStorage, cache ICacheClient, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, media: media, cache: cache, auth: auth}
}

// removeStaged deletes a staged upload. Best effort; a leftover temp file is
// not worth failing the request over.
func removeStaged(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Log.WithError(err).WithField("path", path).Warn("Failed to remove staged file")
	}
}

// Register validates the profile fields, uploads the staged media, and
// creates the account. The returned user carries no password or refresh
// token.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest, avatarPath, coverPath string) (*model.User, error) {
	defer removeStaged(avatarPath)
	defer removeStaged(coverPath)

	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(req.Password) == "" {
		return nil, ErrFieldsRequired
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	if avatarPath == "" {
		return nil, ErrAvatarRequired
	}

	avatar, err := s.media.Upload(ctx, avatarPath)
	if err != nil || avatar.URL == "" {
		logger.Log.WithError(err).Warn("Avatar upload failed during registration")
		return nil, ErrAvatarRequired
	}

	// A failed cover upload is tolerated: the account is created with an
	// empty cover image.
	coverURL := ""
	if coverPath != "" {
		if cover, err := s.media.Upload(ctx, coverPath); err == nil {
			coverURL = cover.URL
		} else {
			logger.Log.WithError(err).Warn("Cover image upload failed, continuing without it")
		}
	}

	hashed, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatar.URL,
		CoverImage: coverURL,
		Password:   hashed,
	}

	if err := s.userRepo.Create(user); err != nil {
		if err == repository.ErrDuplicateUser {
			return nil, ErrUserExists
		}
		return nil, err
	}

	created, err := s.userRepo.GetPublicByID(user.ID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Post-create fetch failed")
		return nil, ErrCreatedFetchFailed
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  created.ID,
		"username": created.Username,
	}).Info("User registered")
	return created, nil
}

func (s *UserService) invalidateChannelCache(username string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(context.Background(), channelCacheKey(username))
}

// UpdateAccountDetails replaces the display name and email.
func (s *UserService) UpdateAccountDetails(userID int, fullName, email string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, ErrFieldsRequired
	}

	user, err := s.userRepo.UpdateAccountDetails(userID, fullName, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.invalidateChannelCache(user.Username)
	user.Password = ""
	user.RefreshToken = ""
	return user, nil
}

// UpdateAvatar uploads the staged file and swaps the avatar reference.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int, localPath string) (*model.User, error) {
	defer removeStaged(localPath)

	if localPath == "" {
		return nil, ErrAvatarRequired
	}

	result, err := s.media.Upload(ctx, localPath)
	if err != nil || result.URL == "" {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Avatar upload failed")
		return nil, ErrAvatarRequired
	}

	user, err := s.userRepo.UpdateAvatar(userID, result.URL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.invalidateChannelCache(user.Username)
	user.Password = ""
	user.RefreshToken = ""
	return user, nil
}

// UpdateCoverImage uploads the staged file and swaps the cover reference.
// Unlike registration, an explicit cover update must succeed.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID int, localPath string) (*model.User, error) {
	defer removeStaged(localPath)

	if localPath == "" {
		return nil, ErrCoverImageRequired
	}

	result, err := s.media.Upload(ctx, localPath)
	if err != nil || result.URL == "" {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Cover image upload failed")
		return nil, ErrCoverImageRequired
	}

	user, err := s.userRepo.UpdateCoverImage(userID, result.URL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.invalidateChannelCache(user.Username)
	user.Password = ""
	user.RefreshToken = ""
	return user, nil
}
