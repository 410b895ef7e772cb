package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shoptill/internal/core/apperror"
	"shoptill/pkg/logger"
)

// ServiceConfig holds sign-in policy configuration.
type ServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
	PINMinLength     int
}

// DefaultServiceConfig returns default sign-in policy.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		PINMinLength:     4,
	}
}

// Service handles operator sign-in and management.
type Service struct {
	operators  Repository
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(operators Repository, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		operators:  operators,
		jwtService: jwtService,
		config:     config,
	}
}

// Login verifies a code/PIN pair and issues a session token. Failed
// attempts count toward lockout; the same generic error covers unknown
// codes and wrong PINs.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	op, err := s.operators.GetByCode(ctx, creds.Code)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := op.CanLogin(); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PINHash), []byte(creds.PIN)); err != nil {
		op.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.operators.Update(ctx, op)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateToken(op)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	op.RecordSuccessfulLogin()
	_ = s.operators.Update(ctx, op)

	logger.Info(ctx, "operator logged in",
		"operator_id", op.ID,
		"code", op.Code)

	return &Session{Token: token, ExpiresAt: expiresAt, Operator: op}, nil
}

// CreateOperator registers a new till operator.
func (s *Service) CreateOperator(ctx context.Context, code, name, pin string, manager bool) (*Operator, error) {
	if len(pin) < s.config.PINMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("pin must be at least %d digits", s.config.PINMinLength),
		).WithDetail("field", "pin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	op := NewOperator(code, name, string(hash))
	op.IsManager = manager
	if err := op.Validate(); err != nil {
		return nil, err
	}
	if err := s.operators.Create(ctx, op); err != nil {
		return nil, err
	}

	logger.Info(ctx, "operator created", "operator_id", op.ID, "code", op.Code)
	return op, nil
}

// ChangePIN replaces an operator's PIN after verifying the current one.
func (s *Service) ChangePIN(ctx context.Context, code, currentPIN, newPIN string) error {
	op, err := s.operators.GetByCode(ctx, code)
	if err != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PINHash), []byte(currentPIN)); err != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}
	if len(newPIN) < s.config.PINMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("pin must be at least %d digits", s.config.PINMinLength),
		).WithDetail("field", "pin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	op.PINHash = string(hash)
	op.UpdatedAt = time.Now().UTC()
	return s.operators.Update(ctx, op)
}
