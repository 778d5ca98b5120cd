package friendrequest

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

var friendRequestColumns = []string{"receiver_uid", "sender_uid", "message", "created_at"}

// Repository handles friend request persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new friend request repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Exists reports whether a pending friend request from sender to receiver exists
func (r *Repository) Exists(ctx context.Context, receiverUID, senderUID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "friendrequest.Repository.Exists")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("1")
	sb.From("friend_requests")
	sb.Where(
		sb.Equal("receiver_uid", receiverUID),
		sb.Equal("sender_uid", senderUID),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return false, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"receiver_uid": receiverUID, "sender_uid": senderUID}).Error("Failed to check friend request existence")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check friend request")
	}
	return true, nil
}

// ListByReceiver returns pending friend requests addressed to a user, newest first
func (r *Repository) ListByReceiver(ctx context.Context, receiverUID string, limit int) ([]models.FriendRequest, error) {
	ctx, span := tracing.StartSpan(ctx, "friendrequest.Repository.ListByReceiver")
	defer span.End()

	if limit < 1 || limit > 100 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(friendRequestColumns...)
	sb.From("friend_requests")
	sb.Where(sb.Equal("receiver_uid", receiverUID))
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var requests []models.FriendRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"receiver_uid": receiverUID}).Error("Failed to list friend requests")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list friend requests")
	}
	return requests, nil
}
