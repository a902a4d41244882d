// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"restore/internal/domain/entity"
	domainerrors "restore/internal/domain/errors"
	"restore/internal/domain/repository"
	"restore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID together with their roles.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByUserName looks a user up by normalized user name on the primary.
func (repo *userRepository) FindByUserName(ctx context.Context, userName string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Preload("Roles").
		Where("normalized_user_name = ?", entity.NormalizeName(userName)).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by user name")
	}

	return toUserDomain(&userM), nil
}

// ExistsByEmail reports whether the normalized email is already taken.
func (repo *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.UserModel{}).
		Where("normalized_email = ?", entity.NormalizeName(email)).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}

	return count > 0, nil
}

// Create persists a new user entity. Roles are granted separately through AddToRole.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	if userM.ID == uuid.Nil {
		userM.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Omit("Roles").Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("user name or email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// AddToRole links the user to the role row with the given name, creating the row on first use.
func (repo *userRepository) AddToRole(ctx context.Context, userID uuid.UUID, role entity.Role) error {
	roleM := model.RoleModel{
		Name:           role.String(),
		NormalizedName: entity.NormalizeName(role.String()),
	}
	err := repo.db.WithContext(ctx).
		Where("normalized_name = ?", roleM.NormalizedName).
		FirstOrCreate(&roleM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to find or create role "+role.String())
	}

	link := &model.UserRoleModel{UserID: userID, RoleID: roleM.ID}
	if err := repo.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return nil
		}
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrUserNotFound, "failed to add role")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to add user to role")
	}

	return nil
}

func toUserDomain(userM *model.UserModel) *entity.User {
	if userM == nil {
		return nil
	}

	roles := make(entity.Roles, 0, len(userM.Roles))
	for _, r := range userM.Roles {
		role := entity.Role(r.Name)
		if role.IsValid() {
			roles = append(roles, role)
		}
	}

	return &entity.User{
		ID:                 userM.ID,
		UserName:           userM.UserName,
		NormalizedUserName: userM.NormalizedUserName,
		Email:              userM.Email,
		NormalizedEmail:    userM.NormalizedEmail,
		PasswordHash:       userM.PasswordHash,
		Roles:              roles,
		CreatedAt:          userM.CreatedAt,
		UpdatedAt:          userM.UpdatedAt,
	}
}

func fromUserDomain(user *entity.User) *model.UserModel {
	if user == nil {
		return nil
	}

	return &model.UserModel{
		ID:                 user.ID,
		UserName:           user.UserName,
		NormalizedUserName: entity.NormalizeName(user.UserName),
		Email:              user.Email,
		NormalizedEmail:    entity.NormalizeName(user.Email),
		PasswordHash:       user.PasswordHash,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}
