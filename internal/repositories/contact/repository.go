package contact

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

var contactColumns = []string{"owner_uid", "other_uid", "is_sender", "created_at"}

// Repository handles contact persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contact repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Exists reports whether owner has other in their contact list
func (r *Repository) Exists(ctx context.Context, ownerUID, otherUID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.Exists")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("1")
	sb.From("contacts")
	sb.Where(
		sb.Equal("owner_uid", ownerUID),
		sb.Equal("other_uid", otherUID),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return false, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"owner_uid": ownerUID, "other_uid": otherUID}).Error("Failed to check contact existence")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check contact")
	}
	return true, nil
}

// ListByOwner returns a user's contacts, newest first
func (r *Repository) ListByOwner(ctx context.Context, ownerUID string, limit int) ([]models.Contact, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.ListByOwner")
	defer span.End()

	if limit < 1 || limit > 100 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(contactColumns...)
	sb.From("contacts")
	sb.Where(sb.Equal("owner_uid", ownerUID))
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"owner_uid": ownerUID}).Error("Failed to list contacts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list contacts")
	}
	return contacts, nil
}
