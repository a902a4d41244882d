// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	deliverycontext "restore/internal/delivery/context"
	"restore/internal/domain/entity"
	domainerrors "restore/internal/domain/errors"
	"restore/internal/domain/repository"
	"restore/internal/domain/service"
	"restore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Field keys reported in registration validation errors.
const (
	FieldDuplicateUserName = "DuplicateUserName"
	FieldDuplicateEmail    = "DuplicateEmail"
	FieldPassword          = "Password"
)

// unknownUserPassword is hashed once so logins for unknown user names still pay for a bcrypt comparison.
const unknownUserPassword = "unknown-user-placeholder"

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	publisher    service.EventPublisher
	logger       *slog.Logger
	now          func() time.Time
	unknownHash  func() string
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		logger:       params.Logger,
		now:          time.Now,
		unknownHash: sync.OnceValue(func() string {
			hash, err := params.Hasher.Hash(unknownUserPassword)
			if err != nil {
				params.Logger.Warn("Failed to prepare unknown-user hash", slog.Any("error", err))

				return ""
			}

			return hash
		}),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register checks identifier uniqueness and the password policy, then creates
// the user and grants the Member role in one transaction.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	var registered *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		verr, err := srv.validateRegistration(ctx, userRepo, input)
		if err != nil {
			return err
		}
		if !verr.Empty() {
			return verr
		}

		hash, err := srv.hasher.Hash(input.Password)
		if err != nil {
			srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

			return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}

		user := entity.NewUser(input.UserName, input.Email)
		user.PasswordHash = hash

		if err := userRepo.Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		if err := userRepo.AddToRole(ctx, user.ID, entity.RoleMember); err != nil {
			return errors.Wrap(err, "failed to grant member role")
		}
		user.Roles = entity.Roles{entity.RoleMember}
		registered = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Account registered", slog.String("userID", registered.ID.String()))
	srv.publish(ctx, service.AccountEventRegistered, registered)

	return &usecase.RegisterOutput{User: registered}, nil
}

func (srv *accountService) validateRegistration(
	ctx context.Context,
	userRepo repository.UserRepository,
	input *usecase.RegisterInput,
) (*domainerrors.ValidationError, error) {
	verr := domainerrors.NewValidationError()

	_, err := userRepo.FindByUserName(ctx, input.UserName)
	switch {
	case err == nil:
		verr.Add(FieldDuplicateUserName, fmt.Sprintf("Username '%s' is already taken.", input.UserName))
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, errors.Wrap(err, "failed to check user name")
	}

	exists, err := userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check email")
	}
	if exists {
		verr.Add(FieldDuplicateEmail, fmt.Sprintf("Email '%s' is already taken.", input.Email))
	}

	for _, problem := range srv.hasher.ValidatePasswordStrength(input.Password) {
		verr.Add(FieldPassword, problem)
	}

	return verr, nil
}

// Login never reveals whether the user name exists: both failures map to ErrInvalidCredentials.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.SessionOutput, error) {
	user, err := srv.userRepo.FindByUserName(ctx, input.UserName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.hasher.Check(input.Password, srv.unknownHash())
			srv.log(ctx).Info("Login rejected", slog.String("reason", "unknown user"))

			return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("reason", "password mismatch"), slog.String("userID", user.ID.String()))

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	out, err := srv.issueSession(user)
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, service.AccountEventSignedIn, user)

	return out, nil
}

// CurrentUser treats a vanished account like an invalid token so the client purges its session.
func (srv *accountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*usecase.SessionOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthorized, "token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load current user")
	}

	return srv.issueSession(user)
}

func (srv *accountService) issueSession(user *entity.User) (*usecase.SessionOutput, error) {
	token, expiresAt, err := srv.tokenService.IssueToken(service.TokenSubject{
		UserID:   user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Roles:    user.Roles.ToStrings(),
	})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return &usecase.SessionOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// publish is best effort: a broker outage never fails the account operation.
func (srv *accountService) publish(ctx context.Context, eventType string, user *entity.User) {
	event := &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		UserID:     user.ID.String(),
		UserName:   user.UserName,
		OccurredAt: srv.now().UTC(),
	}

	if err := srv.publisher.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("type", eventType),
			slog.Any("error", err),
		)
	}
}
