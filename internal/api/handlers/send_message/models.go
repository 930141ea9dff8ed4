package send_message

// Request тело POST /api/v1/conversations/{conversationId}/messages
type Request struct {
	Text string `json:"text"`
}
