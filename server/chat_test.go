package server_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/mrsingh-rishi/voice-gateway/model"
)

func TestChatMissingMessages(t *testing.T) {
	app, _ := newTestApp(t, nil)

	for _, body := range []string{
		``,
		`{}`,
		`not json`,
		`[{"role":"user","content":"hi"}]`,
		`{"message":[{"role":"user","content":"hi"}]}`,
		`{"messages":null}`,
		`{"messages":[]}`,
	} {
		resp, got := do(t, app, postJSON("/chat", body))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
		assert.JSONEq(t, `{"error":"Missing messages"}`, got, "body %q", body)
	}
}

func TestChatInvalidMessages(t *testing.T) {
	app, _ := newTestApp(t, nil)

	cases := map[string]string{
		`{"messages":"hello"}`:                           "Invalid messages: expected a list of {role, content} objects",
		`{"messages":[{"role":"user","content":["a"]}]}`: "Invalid messages: expected a list of {role, content} objects",
		`{"messages":[{"role":"robot","content":"hi"}]}`: "Invalid messages: messages[0].role must be one of: system user assistant",
		`{"messages":[{"content":"hi"}]}`:                "Invalid messages: messages[0].role is required",
	}
	for body, want := range cases {
		resp, got := do(t, app, postJSON("/chat", body))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
		assert.JSONEq(t, `{"error":"`+want+`"}`, got, "body %q", body)
	}
}

func TestChatReply(t *testing.T) {
	app, p := newTestApp(t, nil)

	want := []model.Message{
		{Role: "system", Content: "You are a friendly, supportive AI friend."},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello!"},
		{Role: "user", Content: "how are you?"},
	}
	p.chat.EXPECT().Complete(gomock.Any(), want).Return("Doing great.", nil)

	resp, got := do(t, app, postJSON("/chat", `{"messages":[
		{"role":"system","content":"You are a friendly, supportive AI friend."},
		{"role":"user","content":"hi"},
		{"role":"assistant","content":"hello!"},
		{"role":"user","content":"how are you?"}
	]}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"reply":"Doing great."}`, got)
}

func TestChatProviderError(t *testing.T) {
	app, p := newTestApp(t, nil)
	p.chat.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return("", errors.New("chat completion: error, status code: 401, message: Invalid API Key"))

	resp, got := do(t, app, postJSON("/chat", `{"messages":[{"role":"user","content":"hi"}]}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"chat completion: error, status code: 401, message: Invalid API Key"}`, got)
}
