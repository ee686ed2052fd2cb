package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/docstore"
	"github.com/stemsi/testcraft-backend/internal/identity"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stemsi/testcraft-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with the teacher's identity.
type Claims struct {
	jwt.RegisteredClaims
	TeacherID string `json:"teacher_id"`
	Email     string `json:"email"`
}

// AuthService handles teacher accounts, JWTs and session management. Each
// teacher has one active session; signing in again replaces it.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	teachers *repository.TeacherRepository
	notifier identity.Notifier
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	teachers *repository.TeacherRepository,
	notifier identity.Notifier,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		rdb:      rdb,
		teachers: teachers,
		notifier: notifier,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a teacher account without signing it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.Teacher, error) {
	_, err := s.teachers.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	teacher := &model.Teacher{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	// The lookup above is only a fast path; the store's unique email index
	// decides between concurrent signups.
	if err := s.teachers.Create(ctx, teacher); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.log.Info().Str("teacher_id", teacher.ID).Msg("Teacher registered")
	return teacher, nil
}

// Signup registers a teacher and signs them in.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.LoginResponse, error) {
	teacher, err := s.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, teacher)
}

// Login checks credentials and starts a new session.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	teacher, err := s.teachers.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup teacher: %w", err)
	}
	if err := s.CheckPassword(teacher.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return s.startSession(ctx, teacher)
}

func (s *AuthService) startSession(ctx context.Context, teacher *model.Teacher) (*model.LoginResponse, error) {
	signed, jti, err := s.GenerateToken(teacher)
	if err != nil {
		return nil, err
	}

	// Store session in Redis with same expiry as JWT.
	if err := s.rdb.Set(ctx, config.CacheKey.TeacherSessionKey(teacher.ID), jti, s.cfg.JWTExpiry).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.announce(ctx, identity.Event{Kind: identity.EventSignedIn, UserID: teacher.ID, SessionID: jti})
	return &model.LoginResponse{Token: signed, Teacher: *teacher}, nil
}

// GenerateToken signs a JWT for the teacher and returns it with its token ID.
func (s *AuthService) GenerateToken(teacher *model.Teacher) (string, string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   teacher.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TeacherID: teacher.ID,
		Email:     teacher.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TeacherID == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI is the teacher's active session.
func (s *AuthService) ValidateSession(ctx context.Context, teacherID, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.TeacherSessionKey(teacherID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout ends the teacher's session and tells open connections about it.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if err := s.rdb.Del(ctx, config.CacheKey.TeacherSessionKey(claims.TeacherID)).Err(); err != nil {
		return fmt.Errorf("drop session: %w", err)
	}
	s.announce(ctx, identity.Event{Kind: identity.EventSignedOut, UserID: claims.TeacherID, SessionID: claims.ID})
	return nil
}

// Me returns the signed-in teacher.
func (s *AuthService) Me(ctx context.Context) (*model.Teacher, error) {
	teacherID, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, notFound(err)
	}
	return teacher, nil
}

// announce publishes a sign-in state change. Delivery is best-effort.
func (s *AuthService) announce(ctx context.Context, ev identity.Event) {
	if s.notifier == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("teacher_id", ev.UserID).Str("kind", string(ev.Kind)).Msg("Failed to publish auth event")
	}
}
