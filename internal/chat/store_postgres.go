package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreateChat(ctx context.Context, c *Chat) error {
	const query = `
		INSERT INTO chats (id, recipient_id, donor_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), uuid.UUID(c.RecipientID), uuid.UUID(c.DonorID), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetChat(ctx context.Context, id domain.ChatID) (*Chat, error) {
	const query = `SELECT id, recipient_id, donor_id, created_at FROM chats WHERE id = $1`
	var (
		c               Chat
		cid, recv, dnr  uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)).
		Scan(&cid, &recv, &dnr, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	c.ID = domain.ChatID(cid)
	c.RecipientID = domain.UserID(recv)
	c.DonorID = domain.UserID(dnr)
	return &c, nil
}

func (s *PostgresStore) ListChats(ctx context.Context, participant domain.UserID) ([]Chat, error) {
	const query = `
		SELECT id, recipient_id, donor_id, created_at
		FROM chats
		WHERE recipient_id = $1 OR donor_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(participant))
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		var (
			c              Chat
			cid, recv, dnr uuid.UUID
		)
		if err := rows.Scan(&cid, &recv, &dnr, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		c.ID = domain.ChatID(cid)
		c.RecipientID = domain.UserID(recv)
		c.DonorID = domain.UserID(dnr)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteChat(ctx context.Context, id domain.ChatID) error {
	// Messages cascade via the chat_messages.chat_id foreign key.
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) AppendMessage(ctx context.Context, m *Message) error {
	const query = `
		INSERT INTO chat_messages (id, chat_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(m.ID), uuid.UUID(m.ChatID), uuid.UUID(m.SenderID), m.Text, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMessage(ctx context.Context, id domain.MessageID) (*Message, error) {
	const query = `SELECT id, chat_id, sender_id, text, created_at FROM chat_messages WHERE id = $1`
	var (
		m               Message
		mid, chat, sndr uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)).
		Scan(&mid, &chat, &sndr, &m.Text, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat message: %w", err)
	}
	m.ID = domain.MessageID(mid)
	m.ChatID = domain.ChatID(chat)
	m.SenderID = domain.UserID(sndr)
	return &m, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, chatID domain.ChatID) ([]Message, error) {
	const query = `
		SELECT id, chat_id, sender_id, text, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(chatID))
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m               Message
			mid, chat, sndr uuid.UUID
		)
		if err := rows.Scan(&mid, &chat, &sndr, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.ID = domain.MessageID(mid)
		m.ChatID = domain.ChatID(chat)
		m.SenderID = domain.UserID(sndr)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteMessage(ctx context.Context, id domain.MessageID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM chat_messages WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
