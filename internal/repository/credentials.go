package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

// CredentialRepository defines the interface for email/password credential
// storage.
type CredentialRepository interface {
	// Create persists a new credential, failing with ErrEmailTaken if the
	// email is already registered.
	Create(ctx context.Context, cred *model.Credential) error

	// GetByEmail reads the credential for an email, failing with
	// ErrNotFound if none exists.
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
}

const credentialCollection = "credentials"

type credentialDoc struct {
	UserID       string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	DisplayName  string    `bson:"display_name"`
	CreatedAt    time.Time `bson:"created_at"`
}

type credentialMongoRepository struct {
	db *mongo.Database
}

// NewCredentialMongoRepository creates a CredentialRepository backed by the
// credentials collection with a unique email index.
func NewCredentialMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) CredentialRepository {
	collection := db.Collection(credentialCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create credential indexes")
	}

	return &credentialMongoRepository{db: db}
}

func (r *credentialMongoRepository) Create(ctx context.Context, cred *model.Credential) error {
	doc := credentialDoc{
		UserID:       cred.UserID,
		Email:        cred.Email,
		PasswordHash: cred.PasswordHash,
		DisplayName:  cred.DisplayName,
		CreatedAt:    cred.CreatedAt,
	}

	if _, err := r.db.Collection(credentialCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return storeErr(err)
	}

	return nil
}

func (r *credentialMongoRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	result := r.db.Collection(credentialCollection).FindOne(ctx, bson.M{"email": email})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	var doc credentialDoc
	if err := result.Decode(&doc); err != nil {
		return nil, storeErr(err)
	}

	return &model.Credential{
		UserID:       doc.UserID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		DisplayName:  doc.DisplayName,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

type credentialMemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*model.Credential
}

// NewCredentialMemoryRepository creates an in-memory CredentialRepository
// used in tests and local development.
func NewCredentialMemoryRepository() CredentialRepository {
	return &credentialMemoryRepository{byEmail: make(map[string]*model.Credential)}
}

func (r *credentialMemoryRepository) Create(ctx context.Context, cred *model.Credential) error {
	if err := ctx.Err(); err != nil {
		return storeErr(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[cred.Email]; ok {
		return ErrEmailTaken
	}

	clone := *cred
	r.byEmail[cred.Email] = &clone

	return nil
}

func (r *credentialMemoryRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *cred
	return &clone, nil
}
