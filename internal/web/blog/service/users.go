package service

import (
	"context"
	"strings"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"golang.org/x/crypto/bcrypt"
)

const loginFailureKeyPrefix = "login-failures/"

// hashPassword is swapped in tests to avoid the bcrypt cost.
var hashPassword = func(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

// UserRegister creates a user and signs a token for it.
func (s *Blog) UserRegister(ctx context.Context,
	name, email, password string) (u *model.User, token string, err error) {
	if name, err = sanitizeRequiredText(name, maxUserNameLength, "Name"); err != nil {
		return nil, "", err
	}
	if email, err = sanitizeEmail(email); err != nil {
		return nil, "", err
	}
	if password, err = sanitizePassword(password); err != nil {
		return nil, "", err
	}

	// check duplicate, the unique index covers concurrent registrations
	if _, err = s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, "", model.NewError(model.ErrConflict, "User already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, "", err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, "", errors.Wrapf(err, "register %q", email)
	}

	u = model.NewUser(name, email, hashed)
	if err = s.store.InsertUser(ctx, u); err != nil {
		return nil, "", err
	}

	if token, err = s.tokens.Sign(u.GetID(), u.Email); err != nil {
		return nil, "", errors.Wrapf(err, "sign token for %q", email)
	}

	gmw.GetLogger(ctx).Info("insert new user", zap.String("email", email))
	return u, token, nil
}

// UserLogin verifies credentials and signs a token.
//
// An unknown email and a wrong password yield the same ErrInvalidCredentials.
func (s *Blog) UserLogin(ctx context.Context,
	email, password string) (u *model.User, token string, err error) {
	logger := gmw.GetLogger(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", errors.WithStack(model.ErrInvalidCredentials)
	}

	if s.loginBlocked(ctx, email) {
		logger.Warn("login throttled", zap.String("email", email))
		return nil, "", errors.WithStack(model.ErrTooManyAttempts)
	}

	u, err = s.store.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.loginFailed(ctx, email)
		return nil, "", errors.Wrap(model.ErrInvalidCredentials, "user not found")
	case err != nil:
		return nil, "", err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.loginFailed(ctx, email)
		return nil, "", errors.Wrap(model.ErrInvalidCredentials, "password mismatch")
	}

	if token, err = s.tokens.Sign(u.GetID(), u.Email); err != nil {
		return nil, "", errors.Wrapf(err, "sign token for %q", email)
	}

	s.loginSucceeded(ctx, email)
	logger.Debug("user login", zap.String("email", email))
	return u, token, nil
}

// loginBlocked reports whether email used up its failure budget.
// Limiter errors never block a login.
func (s *Blog) loginBlocked(ctx context.Context, email string) bool {
	if s.limiter == nil {
		return false
	}

	n, err := s.limiter.Count(ctx, loginFailureKeyPrefix+email)
	if err != nil {
		gmw.GetLogger(ctx).Warn("count login failures", zap.Error(err))
		return false
	}

	return n >= s.loginMax
}

func (s *Blog) loginFailed(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}

	if _, err := s.limiter.Incr(ctx, loginFailureKeyPrefix+email, s.loginWindow); err != nil {
		gmw.GetLogger(ctx).Warn("record login failure", zap.Error(err))
	}
}

func (s *Blog) loginSucceeded(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}

	if err := s.limiter.Reset(ctx, loginFailureKeyPrefix+email); err != nil {
		gmw.GetLogger(ctx).Warn("reset login failures", zap.Error(err))
	}
}
