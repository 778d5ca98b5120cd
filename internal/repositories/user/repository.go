package user

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var userColumns = []string{"uid", "display_name", "fcm_token", "created_at", "updated_at"}

// Repository handles user persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new user repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a user by uid. Returns nil when the user does not exist.
func (r *Repository) Get(ctx context.Context, uid string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(userColumns...)
	sb.From("users")
	sb.Where(sb.Equal("uid", uid))
	sb.Limit(1)

	query, args := sb.Build()
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"uid": uid}).Error("Failed to get user")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get user")
	}

	return &user, nil
}

// GetMany retrieves users by uid. Missing uids are simply absent from the result.
func (r *Repository) GetMany(ctx context.Context, uids []string) ([]models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.Repository.GetMany")
	defer span.End()

	if len(uids) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(userColumns...)
	sb.From("users")
	sb.Where(sb.In("uid", sqlbuilder.Flatten(uids)...))

	query, args := sb.Build()
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"uids": uids}).Error("Failed to get users")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get users")
	}
	return users, nil
}
