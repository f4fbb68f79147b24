package accounts

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/redasGoluenko/Errando/access"
	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/dbcore"
	"github.com/redasGoluenko/Errando/database/models"
	"github.com/redasGoluenko/Errando/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxUsernameLength = 100
	minPasswordLength = 6
)

// NewUser is the input for registration and admin user creation.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Role     *models.Role
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len([]rune(username)) > maxUsernameLength {
		return "", fmt.Errorf("%w: username must be between 1 and %d characters", common.ErrValidation, maxUsernameLength)
	}
	return username, nil
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email %q is not a valid address", common.ErrValidation, email)
	}
	return email, nil
}

func validatePassword(passwd string) error {
	if len(passwd) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrValidation, minPasswordLength)
	}
	return nil
}

// hashPasswd hashes a password with bcrypt at the default cost.
func hashPasswd(passwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func createUser(ctx context.Context, in NewUser) (models.User, error) {
	username, err := validateUsername(in.Username)
	if err != nil {
		return models.User{}, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	if !in.Role.Valid() {
		return models.User{}, fmt.Errorf("%w: role is required", common.ErrValidation)
	}
	hash, err := hashPasswd(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Version:      1,
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&user).Error; err != nil {
		return models.User{}, dbcore.Translate(err, "user "+username)
	}
	return user, nil
}

// Register creates a Client or Runner account for a visitor. An empty role
// registers a Client; Admin accounts cannot be self-registered.
func Register(ctx context.Context, in NewUser) (models.User, error) {
	switch in.Role {
	case models.RoleInvalid:
		in.Role = models.RoleClient
	case models.RoleClient, models.RoleRunner:
	default:
		return models.User{}, fmt.Errorf("%w: cannot register as %s", common.ErrForbidden, in.Role)
	}
	return createUser(ctx, in)
}

// CreateUser creates an account of any role. Admin only.
func CreateUser(ctx context.Context, actor access.Actor, in NewUser) (models.User, error) {
	if err := access.Check(actor, access.Create, access.UserResource(0)); err != nil {
		return models.User{}, err
	}
	if in.Role == models.RoleInvalid {
		in.Role = models.RoleClient
	}
	return createUser(ctx, in)
}

// CheckPassword 检查密码是否正确
//
// Returns the user and true when username exists and passwd matches its hash.
func CheckPassword(ctx context.Context, username, passwd string) (models.User, bool) {
	db := dbcore.GetDBInstance().WithContext(ctx)
	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return models.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(passwd)) != nil {
		return models.User{}, false
	}
	return user, true
}

func getUser(db *gorm.DB, id uint) (models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return models.User{}, dbcore.Translate(err, fmt.Sprintf("user %d", id))
	}
	return user, nil
}

// GetUser returns the account with id if the actor may see it.
func GetUser(ctx context.Context, actor access.Actor, id uint) (models.User, error) {
	if !actor.Authenticated() {
		return models.User{}, common.ErrUnauthenticated
	}
	user, err := getUser(dbcore.GetDBInstance().WithContext(ctx), id)
	if err != nil {
		return models.User{}, err
	}
	if err := access.Check(actor, access.Read, access.UserResource(user.ID)); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ListUsers returns every account for an admin, and only the actor's own
// account for everyone else.
func ListUsers(ctx context.Context, actor access.Actor) ([]models.User, error) {
	if !actor.Authenticated() {
		return nil, common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	if actor.Role != models.RoleAdmin {
		db = db.Where("id = ?", actor.ID)
	}
	users := []models.User{}
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies a partial update. Users may edit their own username,
// email and password; only an admin may edit other accounts or change a role.
// A role or password change signs the account out everywhere.
func UpdateUser(ctx context.Context, actor access.Actor, id uint, p UserPatch) (models.User, error) {
	if !actor.Authenticated() {
		return models.User{}, common.ErrUnauthenticated
	}
	updates := map[string]interface{}{}
	if p.Username != nil {
		username, err := validateUsername(*p.Username)
		if err != nil {
			return models.User{}, err
		}
		updates["username"] = username
	}
	if p.Email != nil {
		email, err := validateEmail(*p.Email)
		if err != nil {
			return models.User{}, err
		}
		updates["email"] = email
	}
	if p.Password != nil {
		if err := validatePassword(*p.Password); err != nil {
			return models.User{}, err
		}
		hash, err := hashPasswd(*p.Password)
		if err != nil {
			return models.User{}, err
		}
		updates["password_hash"] = hash
	}
	if p.Role != nil && !p.Role.Valid() {
		return models.User{}, fmt.Errorf("%w: unknown role", common.ErrValidation)
	}

	db := dbcore.GetDBInstance().WithContext(ctx)
	revoke := p.Password != nil
	err := dbcore.RetryOnStale(func() error {
		user, err := getUser(db, id)
		if err != nil {
			return err
		}
		if err := access.Check(actor, access.Update, access.UserResource(user.ID)); err != nil {
			return err
		}
		if p.Role != nil && *p.Role != user.Role {
			if !access.CanChangeRole(actor) {
				return fmt.Errorf("%w: only an admin can change a role", common.ErrForbidden)
			}
			updates["role"] = *p.Role
			revoke = true
		}
		if len(updates) == 0 {
			return nil
		}
		return dbcore.Translate(
			dbcore.CompareAndSwap(db, &models.User{}, user.ID, user.Version, updates),
			fmt.Sprintf("user %d", user.ID))
	})
	if err != nil {
		return models.User{}, err
	}
	// issued tokens carry the old role, and a new password must end old logins
	if revoke {
		if err := DeleteUserSessions(id); err != nil {
			return models.User{}, err
		}
	}
	return getUser(db, id)
}

// DeleteUser removes an account. Admin only. An account that still owns tasks
// cannot be deleted; tasks it runs and logs it wrote lose their runner.
func DeleteUser(ctx context.Context, actor access.Actor, id uint) error {
	if !actor.Authenticated() {
		return common.ErrUnauthenticated
	}
	db := dbcore.GetDBInstance().WithContext(ctx)
	user, err := getUser(db, id)
	if err != nil {
		return err
	}
	if err := access.Check(actor, access.Delete, access.UserResource(user.ID)); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Task{}).Where("client_id = ?", user.ID).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return fmt.Errorf("%w: cannot delete user %d because they own %d task(s)", common.ErrConflict, user.ID, owned)
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		return dbcore.Translate(err, fmt.Sprintf("user %d", user.ID))
	}
	sessionCache.Flush()
	return nil
}

// GetUserByUsername looks an account up by name.
func GetUserByUsername(username string) (models.User, error) {
	var user models.User
	err := dbcore.GetDBInstance().Where("username = ?", username).First(&user).Error
	if err != nil {
		return models.User{}, dbcore.Translate(err, "user "+username)
	}
	return user, nil
}

// ForceResetPassword 强制重置用户密码
func ForceResetPassword(username, passwd string) error {
	if err := validatePassword(passwd); err != nil {
		return err
	}
	hash, err := hashPasswd(passwd)
	if err != nil {
		return err
	}
	db := dbcore.GetDBInstance()
	result := db.Model(&models.User{}).Where("username = ?", username).
		Updates(map[string]interface{}{"password_hash": hash, "version": gorm.Expr("version + ?", 1)})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", common.ErrNotFound, username)
	}
	return nil
}

// CreateAdminAccount creates an admin account directly, bypassing access
// checks. Used by the command line and first start.
func CreateAdminAccount(username, email, passwd string) (models.User, error) {
	if email == "" {
		email = strings.TrimSpace(username) + "@localhost"
	}
	return createUser(context.Background(), NewUser{
		Username: username,
		Email:    email,
		Password: passwd,
		Role:     models.RoleAdmin,
	})
}

// CreateDefaultAdminAccount 创建默认管理员账户
//
// The name and password come from ADMIN_USERNAME / ADMIN_PASSWORD, falling
// back to "admin" and a generated password.
func CreateDefaultAdminAccount() (username, passwd string, err error) {
	username = os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	passwd = os.Getenv("ADMIN_PASSWORD")
	if passwd == "" {
		passwd = utils.GeneratePassword()
	}
	if _, err = CreateAdminAccount(username, os.Getenv("ADMIN_EMAIL"), passwd); err != nil {
		return "", "", err
	}
	return username, passwd, nil
}

// HasAdmin reports whether any admin account exists.
func HasAdmin() (bool, error) {
	var count int64
	err := dbcore.GetDBInstance().Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error
	return count > 0, err
}
