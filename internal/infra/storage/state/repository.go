package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingAgent/pkg/types"
)

// Repository репозиторий снимков состояния диалога
// Хранятся только скалярные поля: кэши агенды живут в памяти процесса
// и пересоздаются из Klingo при необходимости
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория состояний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert сохраняет снимок состояния беседы, перезаписывая предыдущий
func (r *Repository) Upsert(ctx context.Context, conversationID string, s *domain.DialogueState) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("conversation_state").
		Columns(
			"conversation_id",
			"current_step",
			"user_fullname",
			"user_phone",
			"user_email",
			"user_document",
			"user_birth_date",
			"user_sex",
			"user_token",
			"payment_link",
			"doctor_id",
			"doctor_name",
			"appointment_date",
			"appointment_time",
			"slot_id",
		).
		Values(
			conversationID,
			string(s.CurrentStep),
			s.UserFullname,
			s.UserPhone,
			s.UserEmail,
			s.UserDocument,
			s.UserBirthDate,
			s.UserSex,
			s.UserToken,
			s.PaymentLink,
			s.DoctorID,
			s.DoctorName,
			s.AppointmentDate,
			string(s.AppointmentTime),
			s.SlotID,
		).
		Suffix(`ON CONFLICT (conversation_id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			user_fullname = EXCLUDED.user_fullname,
			user_phone = EXCLUDED.user_phone,
			user_email = EXCLUDED.user_email,
			user_document = EXCLUDED.user_document,
			user_birth_date = EXCLUDED.user_birth_date,
			user_sex = EXCLUDED.user_sex,
			user_token = EXCLUDED.user_token,
			payment_link = EXCLUDED.payment_link,
			doctor_id = EXCLUDED.doctor_id,
			doctor_name = EXCLUDED.doctor_name,
			appointment_date = EXCLUDED.appointment_date,
			appointment_time = EXCLUDED.appointment_time,
			slot_id = EXCLUDED.slot_id,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByConversationID восстанавливает снимок состояния беседы
func (r *Repository) GetByConversationID(ctx context.Context, conversationID string) (*domain.DialogueState, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"current_step",
		"user_fullname",
		"user_phone",
		"user_email",
		"user_document",
		"user_birth_date",
		"user_sex",
		"user_token",
		"payment_link",
		"doctor_id",
		"doctor_name",
		"appointment_date",
		"appointment_time",
		"slot_id",
	).
		From("conversation_state").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByConversationID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		s               domain.DialogueState
		step            string
		appointmentTime string
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&step,
		&s.UserFullname,
		&s.UserPhone,
		&s.UserEmail,
		&s.UserDocument,
		&s.UserBirthDate,
		&s.UserSex,
		&s.UserToken,
		&s.PaymentLink,
		&s.DoctorID,
		&s.DoctorName,
		&s.AppointmentDate,
		&appointmentTime,
		&s.SlotID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByConversationID - scan row: %v", ErrScanRow, err)
	}

	s.CurrentStep = domain.Step(step)
	s.AppointmentTime = types.TimeString(appointmentTime)

	return &s, nil
}
