package conversations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	conversationRepo "github.com/m04kA/SMC-SchedulingAgent/internal/infra/storage/conversation"
	stateRepo "github.com/m04kA/SMC-SchedulingAgent/internal/infra/storage/state"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
	"github.com/m04kA/SMC-SchedulingAgent/internal/usecase/handle_turn"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// memConvRepo репозиторий бесед в памяти
type memConvRepo struct {
	convs    map[string]*domain.Conversation
	messages map[string][]*domain.Message
	nextID   int64
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{
		convs:    make(map[string]*domain.Conversation),
		messages: make(map[string][]*domain.Message),
	}
}

func (r *memConvRepo) Create(_ context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	r.convs[conv.ID] = conv
	return conv, nil
}

func (r *memConvRepo) GetByID(_ context.Context, id string) (*domain.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, conversationRepo.ErrConversationNotFound
	}
	return conv, nil
}

func (r *memConvRepo) AddMessage(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	r.nextID++
	msg.ID = r.nextID
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], msg)
	return msg, nil
}

func (r *memConvRepo) ListMessages(_ context.Context, conversationID string) ([]*domain.Message, error) {
	return r.messages[conversationID], nil
}

// memStateRepo репозиторий снимков состояния в памяти
type memStateRepo struct {
	states map[string]*domain.DialogueState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]*domain.DialogueState)}
}

func (r *memStateRepo) Upsert(_ context.Context, conversationID string, s *domain.DialogueState) error {
	snapshot := *s
	r.states[conversationID] = &snapshot
	return nil
}

func (r *memStateRepo) GetByConversationID(_ context.Context, conversationID string) (*domain.DialogueState, error) {
	s, ok := r.states[conversationID]
	if !ok {
		return nil, stateRepo.ErrStateNotFound
	}
	return s, nil
}

// echoTurns фиктивный обработчик ходов: отвечает эхом и двигает шаг
type echoTurns struct{}

func (echoTurns) Execute(_ context.Context, req *handle_turn.Request) (*handle_turn.Response, error) {
	if req.State.CurrentStep == domain.StepStart {
		req.State.CurrentStep = domain.StepAskDoctorPreference
		return &handle_turn.Response{Reply: "olá!", Step: req.State.CurrentStep}, nil
	}
	return &handle_turn.Response{Reply: "eco: " + req.Text, Step: req.State.CurrentStep}, nil
}

// fakeTxManager выполняет функцию без транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(convRepo *memConvRepo, states *memStateRepo) *Service {
	return NewService(convRepo, states, echoTurns{}, fakeTxManager{}, nopLogger{})
}

func TestService_Start(t *testing.T) {
	convRepo := newMemConvRepo()
	states := newMemStateRepo()
	svc := newTestService(convRepo, states)

	resp, err := svc.Start(context.Background(), &models.StartConversationRequest{UserID: "user-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, "olá!", resp.Reply)
	assert.Equal(t, string(domain.StepAskDoctorPreference), resp.Step)

	// Приветствие сохранено как первое сообщение ассистента
	msgs := convRepo.messages[resp.ID]
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleAgent, msgs[0].Role)
	assert.Equal(t, "olá!", msgs[0].Content)

	// Снимок состояния записан
	saved, err := states.GetByConversationID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepAskDoctorPreference, saved.CurrentStep)
}

func TestService_Start_EmptyUserID(t *testing.T) {
	svc := newTestService(newMemConvRepo(), newMemStateRepo())

	_, err := svc.Start(context.Background(), &models.StartConversationRequest{UserID: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_HandleMessage(t *testing.T) {
	convRepo := newMemConvRepo()
	states := newMemStateRepo()
	svc := newTestService(convRepo, states)

	started, err := svc.Start(context.Background(), &models.StartConversationRequest{UserID: "user-1"})
	require.NoError(t, err)

	resp, err := svc.HandleMessage(context.Background(), &models.SendMessageRequest{
		ConversationID: started.ID,
		Text:           "quero marcar uma consulta",
	})
	require.NoError(t, err)
	assert.Equal(t, "eco: quero marcar uma consulta", resp.Reply)

	// Ход сохранен: приветствие + сообщение пользователя + ответ
	msgs := convRepo.messages[started.ID]
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.RoleUser, msgs[1].Role)
	assert.Equal(t, "quero marcar uma consulta", msgs[1].Content)
	assert.Equal(t, domain.RoleAgent, msgs[2].Role)
}

func TestService_HandleMessage_Validation(t *testing.T) {
	svc := newTestService(newMemConvRepo(), newMemStateRepo())

	_, err := svc.HandleMessage(context.Background(), &models.SendMessageRequest{ConversationID: "", Text: "oi"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.HandleMessage(context.Background(), &models.SendMessageRequest{ConversationID: "conv-1", Text: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_HandleMessage_UnknownConversation(t *testing.T) {
	svc := newTestService(newMemConvRepo(), newMemStateRepo())

	_, err := svc.HandleMessage(context.Background(), &models.SendMessageRequest{
		ConversationID: "missing",
		Text:           "oi",
	})
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestService_HandleMessage_RestoresStateAfterRestart(t *testing.T) {
	convRepo := newMemConvRepo()
	states := newMemStateRepo()
	svc := newTestService(convRepo, states)

	started, err := svc.Start(context.Background(), &models.StartConversationRequest{UserID: "user-1"})
	require.NoError(t, err)

	// Новый экземпляр сервиса поверх тех же репозиториев: имитация рестарта
	restarted := newTestService(convRepo, states)

	resp, err := restarted.HandleMessage(context.Background(), &models.SendMessageRequest{
		ConversationID: started.ID,
		Text:           "ainda estou aqui",
	})
	require.NoError(t, err)
	assert.Equal(t, "eco: ainda estou aqui", resp.Reply)
	assert.Equal(t, string(domain.StepAskDoctorPreference), resp.Step)
}

func TestService_GetTranscript(t *testing.T) {
	convRepo := newMemConvRepo()
	states := newMemStateRepo()
	svc := newTestService(convRepo, states)

	started, err := svc.Start(context.Background(), &models.StartConversationRequest{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.HandleMessage(context.Background(), &models.SendMessageRequest{
		ConversationID: started.ID,
		Text:           "oi",
	})
	require.NoError(t, err)

	transcript, err := svc.GetTranscript(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, started.ID, transcript.ConversationID)
	assert.Equal(t, "user-1", transcript.UserID)
	require.Len(t, transcript.Messages, 3)
	assert.Equal(t, "agent", transcript.Messages[0].Role)
}

func TestService_GetTranscript_NotFound(t *testing.T) {
	svc := newTestService(newMemConvRepo(), newMemStateRepo())

	_, err := svc.GetTranscript(context.Background(), "missing")
	require.ErrorIs(t, err, ErrConversationNotFound)
}
