package send_message

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations"
	"github.com/m04kA/SMC-SchedulingAgent/internal/service/conversations/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	lastReq *models.SendMessageRequest
	resp    *models.MessageResponse
	err     error
}

func (f *fakeService) HandleMessage(_ context.Context, req *models.SendMessageRequest) (*models.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newRouter(svc *fakeService) *mux.Router {
	r := mux.NewRouter()
	h := NewHandler(svc, nopLogger{})
	r.HandleFunc("/api/v1/conversations/{conversationId}/messages", h.Handle).Methods(http.MethodPost)
	return r
}

func doPost(t *testing.T, router *mux.Router, conversationID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/conversations/"+conversationID+"/messages",
		strings.NewReader(body),
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	svc := &fakeService{resp: &models.MessageResponse{Reply: "Qual data você prefere?", Step: "ASK_DATE"}}
	rec := doPost(t, newRouter(svc), "conv-1", `{"text": "Dr. Carlos Borba"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastReq)
	assert.Equal(t, "conv-1", svc.lastReq.ConversationID)
	assert.Equal(t, "Dr. Carlos Borba", svc.lastReq.Text)

	var resp models.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ASK_DATE", resp.Step)
	assert.Equal(t, "Qual data você prefere?", resp.Reply)
}

func TestHandle_InvalidBody(t *testing.T) {
	svc := &fakeService{}
	rec := doPost(t, newRouter(svc), "conv-1", `{"text": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.lastReq)
}

func TestHandle_UnknownField(t *testing.T) {
	svc := &fakeService{}
	rec := doPost(t, newRouter(svc), "conv-1", `{"message": "oi"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_EmptyText(t *testing.T) {
	svc := &fakeService{}
	rec := doPost(t, newRouter(svc), "conv-1", `{"text": ""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.lastReq)
}

func TestHandle_ConversationNotFound(t *testing.T) {
	svc := &fakeService{err: conversations.ErrConversationNotFound}
	rec := doPost(t, newRouter(svc), "missing", `{"text": "oi"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandle_InternalError(t *testing.T) {
	svc := &fakeService{err: conversations.ErrInternal}
	rec := doPost(t, newRouter(svc), "conv-1", `{"text": "oi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
