package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService manages chat transcripts.
type ChatService struct {
	store driven.ChatStore
}

// NewChatService creates a chat service.
func NewChatService(store driven.ChatStore) *ChatService {
	return &ChatService{store: store}
}

// Create starts a chat titled after question.
func (s *ChatService) Create(ctx context.Context, userEmail, question string) (int64, error) {
	if strings.TrimSpace(question) == "" {
		return 0, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	chat := &domain.Chat{
		Title:     domain.TitleFromQuestion(question),
		UserEmail: userEmail,
		Messages:  []string{question},
	}
	id, err := s.store.CreateChat(ctx, chat)
	if err != nil {
		return 0, wrapStage(domain.ErrStore, err)
	}
	return id, nil
}

// Recent returns the chats of userEmail, newest first.
func (s *ChatService) Recent(ctx context.Context, userEmail string) ([]domain.Chat, error) {
	chats, err := s.store.ListChats(ctx, userEmail)
	if err != nil {
		return nil, wrapStage(domain.ErrStore, err)
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, nil
}

// History returns the messages of chat id.
func (s *ChatService) History(ctx context.Context, id int64) ([]string, error) {
	chat, err := s.store.GetChat(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, wrapStage(domain.ErrStore, err)
	}
	return chat.Messages, nil
}

// Append adds messages to chat id. A missing chat is reported as false, not as an error.
func (s *ChatService) Append(ctx context.Context, id int64, messages []string) (bool, error) {
	updated, err := s.store.AppendMessages(ctx, id, messages)
	if err != nil {
		return false, wrapStage(domain.ErrStore, err)
	}
	return updated, nil
}
