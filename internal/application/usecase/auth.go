package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingoplatform/internal/domain"
	"lingoplatform/internal/infrastructure/cache"
	"lingoplatform/internal/infrastructure/email"
	"lingoplatform/internal/infrastructure/repository"
	"lingoplatform/internal/infrastructure/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthUseCase struct {
	users     *repository.UserRepository
	profiles  *repository.ProfileRepository
	xp        *XPLedger
	tokens    *security.TokenManager
	hasher    *security.PasswordHasher
	cache     *cache.TokenCache
	mail      *email.EmailSender
	clock     Clock
	loc       *time.Location
	welcomeXP int
	log       *zap.SugaredLogger
}

func NewAuthUseCase(
	users *repository.UserRepository,
	profiles *repository.ProfileRepository,
	xp *XPLedger,
	tokens *security.TokenManager,
	hasher *security.PasswordHasher,
	tokenCache *cache.TokenCache,
	mail *email.EmailSender,
	clock Clock,
	loc *time.Location,
	welcomeXP int,
	log *zap.SugaredLogger,
) *AuthUseCase {
	return &AuthUseCase{
		users:     users,
		profiles:  profiles,
		xp:        xp,
		tokens:    tokens,
		hasher:    hasher,
		cache:     tokenCache,
		mail:      mail,
		clock:     clock,
		loc:       loc,
		welcomeXP: welcomeXP,
		log:       log,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, email, username, password string) (*TokenPair, error) {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		Password: hash,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.log.Infow("user registered", "user_id", user.ID, "email", email)
	return uc.issueTokens(ctx, user.ID)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// не раскрываем, существует ли email
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return uc.issueTokens(ctx, user.ID)
}

// Refresh меняет пару токенов. Старый refresh сразу гасим: одноразовый.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := uc.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, security.ErrInvalidToken
	}
	cachedID, err := uc.cache.CheckRefresh(ctx, refreshToken)
	if err != nil || cachedID != userID {
		return nil, security.ErrInvalidToken
	}
	if err := uc.cache.DeleteRefresh(ctx, refreshToken); err != nil {
		uc.log.Warnw("failed to revoke refresh token", "error", err)
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, security.ErrInvalidToken
	}
	return uc.issueTokens(ctx, id)
}

func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	return uc.cache.DeleteRefresh(ctx, refreshToken)
}

// ForgotPassword всегда отвечает ок: наличие аккаунта не раскрываем.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := uc.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := uc.cache.SaveResetToken(ctx, token, user.ID.String()); err != nil {
		return err
	}
	if err := uc.mail.SendResetEmail(user.Email, token); err != nil {
		uc.log.Errorw("failed to send reset email", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: email delivery failed", domain.ErrExternalService)
	}
	return nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := uc.cache.GetResetToken(ctx, token)
	if err != nil {
		return security.ErrInvalidToken
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return security.ErrInvalidToken
	}

	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := uc.users.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	return uc.cache.DeleteResetToken(ctx, token)
}

// CompleteOnboarding сохраняет анкету и выдает приветственный бонус.
// Разовость бонуса держится на разовости онбординга: повторный вызов
// упирается в ErrAlreadyProcessed до начисления.
func (uc *AuthUseCase) CompleteOnboarding(ctx context.Context, userID uuid.UUID, p *domain.Profile) error {
	if err := uc.profiles.SaveOnboarding(ctx, userID, p); err != nil {
		return err
	}
	today := dateKey(uc.clock.Now(), uc.loc)
	if err := uc.xp.Grant(ctx, userID, uc.welcomeXP, domain.XPReasonWelcome, today); err != nil {
		return err
	}
	uc.log.Infow("onboarding completed", "user_id", userID)
	return nil
}

func (uc *AuthUseCase) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, refresh, err := uc.tokens.Generate(userID.String())
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SaveRefresh(ctx, userID.String(), refresh, uc.tokens.RefreshTTL()); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
