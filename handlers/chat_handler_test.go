package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/minnehack2026-blugolds/backend/internal/testutil"
)

const (
	seller   uint = 2
	buyer    uint = 5
	outsider uint = 9
	post     uint = 10
)

type conversationDTO struct {
	ID            uint       `json:"id"`
	PostID        uint       `json:"post_id"`
	BuyerID       uint       `json:"buyer_id"`
	SellerID      uint       `json:"seller_id"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	UnreadCount   int64      `json:"unread_count"`
}

type messageDTO struct {
	ID             uint   `json:"id"`
	ConversationID uint   `json:"conversation_id"`
	SenderID       uint   `json:"sender_id"`
	Body           string `json:"body"`
}

func newChatServer(t *testing.T) *testServer {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, seller, "seller@example.edu")
	testutil.CreateUser(t, s.db, buyer, "buyer@example.edu")
	testutil.CreateUser(t, s.db, outsider, "outsider@example.edu")
	testutil.CreatePost(t, s.db, post, seller)
	return s
}

func (s *testServer) openConversation(t *testing.T) conversationDTO {
	t.Helper()
	r := s.request(http.MethodPost, "/chat/conversations", map[string]uint{"post_id": post}, buyer)
	expectStatus(t, r, http.StatusOK)
	var conv conversationDTO
	r.decode(t, &conv)
	return conv
}

func TestChat_RequiresAuth(t *testing.T) {
	s := newChatServer(t)

	tests := []struct {
		name    string
		headers []string
	}{
		{name: "no credentials"},
		{name: "garbage bearer", headers: []string{"Authorization", "Bearer nope"}},
		{name: "garbage cookie", headers: []string{"Cookie", "access_token=nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.request(http.MethodGet, "/chat/conversations", nil, 0, tt.headers...)
			expectStatus(t, r, http.StatusUnauthorized)
		})
	}

	t.Run("token for deleted user", func(t *testing.T) {
		expectStatus(t, s.request(http.MethodGet, "/chat/conversations", nil, 404), http.StatusUnauthorized)
	})

	t.Run("cookie works", func(t *testing.T) {
		token, _ := s.tokens.Generate(buyer)
		r := s.request(http.MethodGet, "/chat/conversations", nil, 0, "Cookie", "access_token="+token)
		expectStatus(t, r, http.StatusOK)
	})
}

func TestChat_CreateConversation(t *testing.T) {
	s := newChatServer(t)

	first := s.openConversation(t)
	if first.PostID != post || first.BuyerID != buyer || first.SellerID != seller {
		t.Fatalf("conversation = %+v", first)
	}
	if again := s.openConversation(t); again.ID != first.ID {
		t.Errorf("second create id = %d, want %d", again.ID, first.ID)
	}

	tests := []struct {
		name   string
		body   interface{}
		user   uint
		status int
	}{
		{name: "seller on own post", body: map[string]uint{"post_id": post}, user: seller, status: http.StatusBadRequest},
		{name: "missing post", body: map[string]uint{"post_id": 999}, user: buyer, status: http.StatusNotFound},
		{name: "no post id", body: map[string]string{}, user: buyer, status: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.request(http.MethodPost, "/chat/conversations", tt.body, tt.user), tt.status)
		})
	}
}

func TestChat_MessagesFlow(t *testing.T) {
	s := newChatServer(t)
	conv := s.openConversation(t)
	base := "/chat/conversations/" + itoa(conv.ID)

	r := s.request(http.MethodPost, base+"/messages", map[string]string{"body": "hi"}, seller)
	expectStatus(t, r, http.StatusOK)
	var hi messageDTO
	r.decode(t, &hi)
	if hi.Body != "hi" || hi.SenderID != seller || hi.ConversationID != conv.ID {
		t.Errorf("message = %+v", hi)
	}

	r = s.request(http.MethodPost, base+"/messages", map[string]string{"body": "  hey  "}, buyer)
	expectStatus(t, r, http.StatusOK)
	var hey messageDTO
	r.decode(t, &hey)

	expectStatus(t, s.request(http.MethodPost, base+"/messages", map[string]string{"body": "   "}, buyer), http.StatusUnprocessableEntity)

	r = s.request(http.MethodGet, base+"/messages", nil, buyer)
	expectStatus(t, r, http.StatusOK)
	var page []messageDTO
	r.decode(t, &page)
	if len(page) != 2 || page[0].ID != hi.ID || page[1].ID != hey.ID || page[1].Body != "hey" {
		t.Fatalf("messages = %+v, want [hi hey]", page)
	}

	r = s.request(http.MethodGet, base+"/messages?limit=1&before_id="+itoa(hey.ID), nil, buyer)
	expectStatus(t, r, http.StatusOK)
	r.decode(t, &page)
	if len(page) != 1 || page[0].ID != hi.ID {
		t.Errorf("older page = %+v, want [hi]", page)
	}

	r = s.request(http.MethodPost, base+"/read", nil, buyer)
	expectStatus(t, r, http.StatusOK)
	var read struct {
		OK                bool  `json:"ok"`
		LastReadMessageID *uint `json:"last_read_message_id"`
	}
	r.decode(t, &read)
	if !read.OK || read.LastReadMessageID == nil || *read.LastReadMessageID != hey.ID {
		t.Errorf("read = %+v, want cursor %d", read, hey.ID)
	}

	inbox := func(user uint) conversationDTO {
		t.Helper()
		r := s.request(http.MethodGet, "/chat/conversations", nil, user)
		expectStatus(t, r, http.StatusOK)
		var list []conversationDTO
		r.decode(t, &list)
		if len(list) != 1 {
			t.Fatalf("inbox len = %d, want 1", len(list))
		}
		return list[0]
	}
	if got := inbox(buyer); got.UnreadCount != 0 || got.LastMessage == nil || *got.LastMessage != "hey" {
		t.Errorf("buyer inbox = %+v", got)
	}
	if got := inbox(seller); got.UnreadCount != 1 {
		t.Errorf("seller unread = %d, want 1", got.UnreadCount)
	}
}

func TestChat_MarkReadEmpty(t *testing.T) {
	s := newChatServer(t)
	conv := s.openConversation(t)

	r := s.request(http.MethodPost, "/chat/conversations/"+itoa(conv.ID)+"/read", nil, seller)
	expectStatus(t, r, http.StatusOK)
	var read map[string]interface{}
	r.decode(t, &read)
	if read["ok"] != true || read["last_read_message_id"] != nil {
		t.Errorf("read = %v, want ok with null cursor", read)
	}
}

func TestChat_ErrorStatuses(t *testing.T) {
	s := newChatServer(t)
	conv := s.openConversation(t)
	base := "/chat/conversations/" + itoa(conv.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		user   uint
		status int
	}{
		{name: "outsider reads", method: http.MethodGet, path: base + "/messages", user: outsider, status: http.StatusForbidden},
		{name: "outsider posts", method: http.MethodPost, path: base + "/messages", body: map[string]string{"body": "x"}, user: outsider, status: http.StatusForbidden},
		{name: "outsider marks read", method: http.MethodPost, path: base + "/read", user: outsider, status: http.StatusForbidden},
		{name: "missing conversation", method: http.MethodGet, path: "/chat/conversations/999/messages", user: buyer, status: http.StatusNotFound},
		{name: "missing conversation read", method: http.MethodPost, path: "/chat/conversations/999/read", user: buyer, status: http.StatusNotFound},
		{name: "non numeric id", method: http.MethodGet, path: "/chat/conversations/abc/messages", user: buyer, status: http.StatusBadRequest},
		{name: "non numeric limit", method: http.MethodGet, path: base + "/messages?limit=ten", user: buyer, status: http.StatusBadRequest},
		{name: "zero before id", method: http.MethodGet, path: base + "/messages?before_id=0", user: buyer, status: http.StatusBadRequest},
		{name: "huge limit is clamped", method: http.MethodGet, path: base + "/messages?limit=100000", user: buyer, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.request(tt.method, tt.path, tt.body, tt.user), tt.status)
		})
	}
}
