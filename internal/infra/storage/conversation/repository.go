package conversation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/psqlbuilder"
)

// Repository репозиторий бесед и их сообщений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бесед
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую беседу
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("conversations").
		Columns("id", "user_id").
		Values(conv.ID, conv.UserID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&conv.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return conv, nil
}

// GetByID получает беседу по идентификатору
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "user_id", "created_at").
		From("conversations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var conv domain.Conversation
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan row: %v", ErrScanRow, err)
	}

	return &conv, nil
}

// AddMessage сохраняет сообщение беседы
func (r *Repository) AddMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("messages").
		Columns("conversation_id", "role", "content").
		Values(msg.ConversationID, msg.Role, msg.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: AddMessage - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: AddMessage - execute insert: %v", ErrExecQuery, err)
	}

	return msg, nil
}

// ListMessages возвращает все сообщения беседы в порядке создания
func (r *Repository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "conversation_id", "role", "content", "created_at").
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListMessages - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListMessages - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message
		err = rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListMessages - scan row: %v", ErrScanRow, err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListMessages - iterate rows: %v", ErrExecQuery, err)
	}

	return messages, nil
}
