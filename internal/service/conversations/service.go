package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	conversationRepo "github.com/m04kA/SMC-SchedulingAgent/internal/infra/storage/conversation"
	stateRepo "github.com/m04kA/SMC-SchedulingAgent/internal/infra/storage/state"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
	"github.com/m04kA/SMC-SchedulingAgent/internal/usecase/handle_turn"
)

// session живое состояние одной беседы
// Мьютекс сериализует ходы: два одновременных сообщения одной беседы
// обрабатываются по очереди
type session struct {
	mu    sync.Mutex
	state *domain.DialogueState
}

// Service сервис бесед: создание, обработка сообщений, выписка
// Состояние диалога живет в памяти процесса; в БД пишется скалярный
// снимок вместе с сообщениями
type Service struct {
	convRepo  ConversationRepository
	stateRepo StateRepository
	turns     TurnHandler
	txManager TransactionManager
	logger    Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService создает новый экземпляр сервиса бесед
func NewService(
	convRepo ConversationRepository,
	stateRepo StateRepository,
	turns TurnHandler,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		convRepo:  convRepo,
		stateRepo: stateRepo,
		turns:     turns,
		txManager: txManager,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// Start создает беседу и возвращает приветствие ассистента
func (s *Service) Start(ctx context.Context, req *models.StartConversationRequest) (*models.ConversationResponse, error) {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	conv := &domain.Conversation{
		ID:     uuid.NewString(),
		UserID: req.UserID,
	}
	state := domain.NewDialogueState()

	s.logger.Info("Start: creating conversation id=%s", conv.ID)

	// Первый ход выполняется сразу: шаг START не ждет ввода пользователя
	turn, err := s.turns.Execute(ctx, &handle_turn.Request{State: state, Text: ""})
	if err != nil {
		s.logger.Error("Start: turn execution failed for conversation id=%s: %v", conv.ID, err)
		return nil, fmt.Errorf("%w: Start - turn execution: %v", ErrInternal, err)
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if _, err := s.convRepo.Create(txCtx, conv); err != nil {
			return fmt.Errorf("%w: Start - create conversation: %v", ErrInternal, err)
		}
		greeting := &domain.Message{
			ConversationID: conv.ID,
			Role:           domain.RoleAgent,
			Content:        turn.Reply,
		}
		if _, err := s.convRepo.AddMessage(txCtx, greeting); err != nil {
			return fmt.Errorf("%w: Start - persist greeting: %v", ErrInternal, err)
		}
		if err := s.stateRepo.Upsert(txCtx, conv.ID, state); err != nil {
			return fmt.Errorf("%w: Start - persist state: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Start: failed to persist conversation id=%s: %v", conv.ID, err)
		return nil, err
	}

	s.mu.Lock()
	s.sessions[conv.ID] = &session{state: state}
	s.mu.Unlock()

	s.logger.Info("Start: conversation id=%s created, step=%s", conv.ID, turn.Step)
	return &models.ConversationResponse{
		ID:        conv.ID,
		UserID:    conv.UserID,
		Reply:     turn.Reply,
		Step:      string(turn.Step),
		CreatedAt: conv.CreatedAt,
	}, nil
}

// HandleMessage обрабатывает сообщение пользователя и возвращает ответ
func (s *Service) HandleMessage(ctx context.Context, req *models.SendMessageRequest) (*models.MessageResponse, error) {
	if req == nil || strings.TrimSpace(req.ConversationID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrInvalidInput)
	}

	sess, err := s.session(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	turn, err := s.turns.Execute(ctx, &handle_turn.Request{State: sess.state, Text: req.Text})
	if err != nil {
		s.logger.Error("HandleMessage: turn execution failed for conversation id=%s: %v", req.ConversationID, err)
		return nil, fmt.Errorf("%w: HandleMessage - turn execution: %v", ErrInternal, err)
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		userMsg := &domain.Message{
			ConversationID: req.ConversationID,
			Role:           domain.RoleUser,
			Content:        req.Text,
		}
		if _, err := s.convRepo.AddMessage(txCtx, userMsg); err != nil {
			return fmt.Errorf("%w: HandleMessage - persist user message: %v", ErrInternal, err)
		}
		agentMsg := &domain.Message{
			ConversationID: req.ConversationID,
			Role:           domain.RoleAgent,
			Content:        turn.Reply,
		}
		if _, err := s.convRepo.AddMessage(txCtx, agentMsg); err != nil {
			return fmt.Errorf("%w: HandleMessage - persist agent message: %v", ErrInternal, err)
		}
		if err := s.stateRepo.Upsert(txCtx, req.ConversationID, sess.state); err != nil {
			return fmt.Errorf("%w: HandleMessage - persist state: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("HandleMessage: failed to persist turn for conversation id=%s: %v", req.ConversationID, err)
		return nil, err
	}

	s.logger.Info("HandleMessage: conversation id=%s, step=%s", req.ConversationID, turn.Step)
	return &models.MessageResponse{
		Reply: turn.Reply,
		Step:  string(turn.Step),
	}, nil
}

// GetTranscript возвращает полную выписку беседы
func (s *Service) GetTranscript(ctx context.Context, conversationID string) (*models.TranscriptResponse, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", ErrInvalidInput)
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, conversationRepo.ErrConversationNotFound) {
			s.logger.Warn("GetTranscript: conversation id=%s not found", conversationID)
			return nil, ErrConversationNotFound
		}
		s.logger.Error("GetTranscript: repository error for conversation id=%s: %v", conversationID, err)
		return nil, fmt.Errorf("%w: GetTranscript - repository error: %v", ErrInternal, err)
	}

	msgs, err := s.convRepo.ListMessages(ctx, conversationID)
	if err != nil {
		s.logger.Error("GetTranscript: failed to list messages for conversation id=%s: %v", conversationID, err)
		return nil, fmt.Errorf("%w: GetTranscript - list messages: %v", ErrInternal, err)
	}

	return models.FromDomainMessages(conv, msgs), nil
}

// session возвращает живую сессию беседы, восстанавливая её из БД при
// промахе (например, после перезапуска процесса). Кэши агенды при
// восстановлении пустые: диалог перечитает агенду при необходимости
func (s *Service) session(ctx context.Context, conversationID string) (*session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[conversationID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	// Проверяем, что беседа существует
	if _, err := s.convRepo.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, conversationRepo.ErrConversationNotFound) {
			s.logger.Warn("session: conversation id=%s not found", conversationID)
			return nil, ErrConversationNotFound
		}
		s.logger.Error("session: repository error for conversation id=%s: %v", conversationID, err)
		return nil, fmt.Errorf("%w: session - repository error: %v", ErrInternal, err)
	}

	restored, err := s.stateRepo.GetByConversationID(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, stateRepo.ErrStateNotFound) {
			s.logger.Error("session: failed to restore state for conversation id=%s: %v", conversationID, err)
			return nil, fmt.Errorf("%w: session - restore state: %v", ErrInternal, err)
		}
		restored = domain.NewDialogueState()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Повторная проверка: сессию могли создать параллельно
	if sess, ok := s.sessions[conversationID]; ok {
		return sess, nil
	}
	sess := &session{state: restored}
	s.sessions[conversationID] = sess
	return sess, nil
}
