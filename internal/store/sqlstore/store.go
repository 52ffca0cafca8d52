// Package sqlstore backs the store interfaces with SQLite, giving the
// message log and accounts durability across restarts. Selected with
// PARLEY_STORE_DRIVER=sqlite3; behavior is identical to memstore.
package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
)

type SQLStore struct {
	db *sql.DB
}

func New(dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) createTables() error {
	// Simplified for brevity, ideally use migrations
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		online BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		conversation_key TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		sender_username TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		body TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		FOREIGN KEY (sender_id) REFERENCES users(id),
		FOREIGN KEY (recipient_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON messages(conversation_key, seq);
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *SQLStore) CreateUser(user *models.User) error {
	_, err := s.db.Exec(
		"INSERT INTO users (id, username, password, online) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, user.Password, user.Online,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return store.ErrUsernameTaken
	}
	return err
}

func (s *SQLStore) UserByID(id string) (*models.User, error) {
	return s.userBy("SELECT id, username, password, online FROM users WHERE id = ?", id)
}

func (s *SQLStore) UserByUsername(username string) (*models.User, error) {
	return s.userBy("SELECT id, username, password, online FROM users WHERE username = ?", username)
}

func (s *SQLStore) userBy(query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(query, arg).Scan(&user.ID, &user.Username, &user.Password, &user.Online)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) Users() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, username, password, online FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Online); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLStore) SetOnline(id string, online bool) error {
	result, err := s.db.Exec("UPDATE users SET online = ? WHERE id = ?", online, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) Append(key string, msg models.Message) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (id, conversation_key, sender_id, sender_username, recipient_id, body, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, key, msg.SenderID, msg.SenderUsername, msg.RecipientID, msg.Body, msg.Timestamp,
	)
	return err
}

func (s *SQLStore) Messages(key string) ([]models.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, sender_id, sender_username, recipient_id, body, timestamp
		 FROM messages WHERE conversation_key = ? ORDER BY seq ASC`,
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderUsername, &m.RecipientID, &m.Body, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
