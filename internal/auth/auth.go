package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"url-monitor-go/pkg/model"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AccountStore persists admin web accounts
type AccountStore interface {
	GetByUsername(username string) (*model.AdminAccount, error)
	Create(account *model.AdminAccount) error
}

// AuthService handles admin authentication for the web API
type AuthService struct {
	accounts  AccountStore
	jwtSecret []byte
}

// NewAuthService creates a new authentication service
func NewAuthService(accounts AccountStore, jwtSecret string) *AuthService {
	return &AuthService{
		accounts:  accounts,
		jwtSecret: []byte(jwtSecret),
	}
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPassword compares password with hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateJWT creates a new JWT token for an authenticated admin
func (s *AuthService) GenerateJWT(chatID int64, username string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["chat_id"] = chatID
	claims["username"] = username
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	return token.SignedString(s.jwtSecret)
}

// Login authenticates an admin and issues an API token
func (s *AuthService) Login(creds model.AdminCredentials) (*model.AdminAccount, string, error) {
	account, err := s.accounts.GetByUsername(creds.Username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !CheckPassword(creds.Password, account.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(account.ChatID, account.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return account, token, nil
}

// EnsureAccount creates an account if the username is not taken yet.
// Used at startup to seed the primary admin's web login.
func (s *AuthService) EnsureAccount(chatID int64, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.accounts.GetByUsername(username); err == nil {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.accounts.Create(&model.AdminAccount{
		ChatID:       chatID,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})
}

// PostgresAccountStore keeps admin accounts in the database
type PostgresAccountStore struct {
	db *sqlx.DB
}

// NewPostgresAccountStore creates an account store and ensures its table exists
func NewPostgresAccountStore(db *sqlx.DB) (*PostgresAccountStore, error) {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS admin_accounts (
            id SERIAL PRIMARY KEY,
            chat_id BIGINT NOT NULL,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare admin_accounts table: %w", err)
	}
	return &PostgresAccountStore{db: db}, nil
}

// GetByUsername fetches one account
func (s *PostgresAccountStore) GetByUsername(username string) (*model.AdminAccount, error) {
	var account model.AdminAccount
	err := s.db.Get(&account, `
        SELECT id, chat_id, username, password_hash, created_at
        FROM admin_accounts
        WHERE username = $1
    `, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("account not found")
		}
		return nil, err
	}
	return &account, nil
}

// Create stores a new account
func (s *PostgresAccountStore) Create(account *model.AdminAccount) error {
	return s.db.QueryRow(`
        INSERT INTO admin_accounts (chat_id, username, password_hash, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, account.ChatID, account.Username, account.PasswordHash, account.CreatedAt).Scan(&account.ID)
}

// MemoryAccountStore keeps admin accounts in memory, for deployments
// without a database.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]model.AdminAccount
	nextID   int
}

// NewMemoryAccountStore creates an empty in-memory account store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]model.AdminAccount),
		nextID:   1,
	}
}

// GetByUsername fetches one account
func (s *MemoryAccountStore) GetByUsername(username string) (*model.AdminAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[username]
	if !ok {
		return nil, errors.New("account not found")
	}
	return &account, nil
}

// Create stores a new account
func (s *MemoryAccountStore) Create(account *model.AdminAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Username]; exists {
		return errors.New("username already taken")
	}
	account.ID = s.nextID
	s.nextID++
	s.accounts[account.Username] = *account
	return nil
}
