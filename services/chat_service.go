package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minnehack2026-blugolds/backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// ConversationSummary is an inbox row: the conversation plus its latest message and unread count.
type ConversationSummary struct {
	models.Conversation
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	UnreadCount   int64      `json:"unread_count"`
}

type ChatService struct {
	db    *gorm.DB
	posts PostReader
	log   *zap.Logger
	now   func() time.Time
}

func NewChatService(db *gorm.DB, posts PostReader, log *zap.Logger) *ChatService {
	return &ChatService{db: db, posts: posts, log: log, now: time.Now}
}

// CreateOrGet returns the conversation between userID (as buyer) and the post's seller,
// creating it on first contact. Concurrent callers for the same post and buyer all get the same row.
func (s *ChatService) CreateOrGet(ctx context.Context, postID, userID uint) (*models.Conversation, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID == nil {
		return nil, fmt.Errorf("%w: post %d has no seller", ErrInternalConsistency, postID)
	}
	sellerID := *post.SellerID
	if userID == sellerID {
		return nil, ErrSelfConversation
	}

	now := s.now().UTC()
	conv := models.Conversation{
		PostID:    postID,
		BuyerID:   userID,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&conv).Error
	})
	if err == nil {
		s.log.Info("conversation created",
			zap.Uint("conversation_id", conv.ID),
			zap.Uint("post_id", postID),
			zap.Uint("buyer_id", userID))
		return &conv, nil
	}
	if !IsUniqueViolation(err) {
		return nil, err
	}

	// The thread already exists, possibly created by a concurrent request. That row is the answer.
	s.log.Debug("conversation exists, fetching it",
		zap.Uint("post_id", postID),
		zap.Uint("buyer_id", userID))
	winner, err := s.findThread(ctx, postID, userID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation after unique violation: %w", err)
	}
	return winner, nil
}

func (s *ChatService) findThread(ctx context.Context, postID, buyerID, sellerID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND buyer_id = ? AND seller_id = ?", postID, buyerID, sellerID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListInbox returns every conversation userID takes part in, most recently active first.
func (s *ChatService) ListInbox(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	var convs []models.Conversation
	if err := s.db.WithContext(ctx).
		Where("(buyer_id = ? OR seller_id = ?)", userID, userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return s.summarize(ctx, userID, convs)
}

// Summary decorates a single conversation the same way ListInbox does.
func (s *ChatService) Summary(ctx context.Context, userID uint, conv models.Conversation) (ConversationSummary, error) {
	out, err := s.summarize(ctx, userID, []models.Conversation{conv})
	if err != nil {
		return ConversationSummary{}, err
	}
	return out[0], nil
}

func (s *ChatService) summarize(ctx context.Context, userID uint, convs []models.Conversation) ([]ConversationSummary, error) {
	out := make([]ConversationSummary, len(convs))
	if len(convs) == 0 {
		return out, nil
	}

	ids := make([]uint, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}
	db := s.db.WithContext(ctx)

	var last []models.Message
	newest := db.Model(&models.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", ids).
		Group("conversation_id")
	if err := db.Where("id IN (?)", newest).Find(&last).Error; err != nil {
		return nil, fmt.Errorf("load last messages: %w", err)
	}
	lastByConv := make(map[uint]models.Message, len(last))
	for _, m := range last {
		lastByConv[m.ConversationID] = m
	}

	type unreadRow struct {
		ConversationID uint
		Unread         int64
	}
	var rows []unreadRow
	if err := db.Table("messages AS m").
		Select("m.conversation_id, COUNT(*) AS unread").
		Joins("LEFT JOIN conversation_reads AS r ON r.conversation_id = m.conversation_id AND r.user_id = ?", userID).
		Where("m.conversation_id IN ?", ids).
		Where("m.sender_id <> ?", userID).
		Where("(r.last_read_message_id IS NULL OR m.id > r.last_read_message_id)").
		Group("m.conversation_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}
	unread := make(map[uint]int64, len(rows))
	for _, r := range rows {
		unread[r.ConversationID] = r.Unread
	}

	for i, c := range convs {
		out[i] = ConversationSummary{Conversation: c, UnreadCount: unread[c.ID]}
		if m, ok := lastByConv[c.ID]; ok {
			body, at := m.Body, m.CreatedAt
			out[i].LastMessage = &body
			out[i].LastMessageAt = &at
		}
	}
	return out, nil
}

// Authorize loads the conversation and checks that userID is its buyer or seller.
func (s *ChatService) Authorize(ctx context.Context, conversationID, userID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).First(&conv, conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: conversation %d", ErrNotFound, conversationID)
	}
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: not a participant of conversation %d", ErrForbidden, conversationID)
	}
	return &conv, nil
}

// Append stores a message and moves the conversation to the top of both inboxes.
func (s *ChatService) Append(ctx context.Context, conversationID, senderID uint, body string) (*models.Message, error) {
	conv, err := s.Authorize(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	now := s.now().UTC()
	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			UpdateColumn("updated_at", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &msg, nil
}

// ClampLimit bounds a page size to [1, MaxPageLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// ListPage returns up to limit messages older than beforeID (or the newest ones), oldest first.
func (s *ChatService) ListPage(ctx context.Context, conversationID, userID uint, limit int, beforeID *uint) ([]models.Message, error) {
	if _, err := s.Authorize(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if beforeID != nil {
		q = q.Where("id < ?", *beforeID)
	}

	messages := []models.Message{}
	if err := q.Order("id DESC").Limit(ClampLimit(limit)).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead moves userID's read cursor to the newest message. Returns nil when the conversation is empty.
func (s *ChatService) MarkRead(ctx context.Context, conversationID, userID uint) (*uint, error) {
	if _, err := s.Authorize(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var maxID sql.NullInt64
	if err := db.Model(&models.Message{}).
		Select("MAX(id)").
		Where("conversation_id = ?", conversationID).
		Row().Scan(&maxID); err != nil {
		return nil, fmt.Errorf("find newest message: %w", err)
	}
	if !maxID.Valid {
		return nil, nil
	}

	last := uint(maxID.Int64)
	read := models.ConversationRead{
		ConversationID:    conversationID,
		UserID:            userID,
		LastReadMessageID: &last,
		UpdatedAt:         s.now().UTC(),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_message_id", "updated_at"}),
	}).Create(&read).Error; err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return &last, nil
}
