package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/peer-support-platform/internal/simulator"
)

func chatState(id uuid.UUID, c *simulator.Chat) ChatSessionResponse {
	msgs := c.Messages()
	resp := ChatSessionResponse{
		SessionID: id,
		Typing:    c.Typing(),
		Messages:  make([]ChatMessageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	return resp
}

func createChatHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := cfg.NewChat()
		id := cfg.Chats.Create(c)
		writeJSON(w, http.StatusCreated, chatState(id, c))
	}
}

func listMessagesHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c, ok := lookupChat(w, r, cfg)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, chatState(id, c))
	}
}

// sendMessageHandler blocks until the simulated reply arrives or the client
// goes away.
func sendMessageHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, c, ok := lookupChat(w, r, cfg)
		if !ok {
			return
		}
		var req SendMessageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		sent, reply, err := c.Send(r.Context(), req.Text)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, SendMessageResponse{
			Sent:  toMessageResponse(sent),
			Reply: toMessageResponse(reply),
		})
	}
}

func lookupChat(w http.ResponseWriter, r *http.Request, cfg RouterConfig) (uuid.UUID, *simulator.Chat, bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	c, err := cfg.Chats.Get(id)
	if err != nil {
		handleError(w, err)
		return uuid.Nil, nil, false
	}
	return id, c, true
}
