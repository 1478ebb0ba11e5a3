package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/cloudvault/cloudvault/internal/models"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateJWT signs a bearer token carrying the username.
func GenerateJWT(username string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour * 4).Unix(), // Token expires in 4 hours
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// MongoProvider authenticates against the users collection and issues JWTs.
type MongoProvider struct {
	users  *mongo.Collection
	secret []byte

	mu    sync.Mutex
	creds Credentials
}

func NewMongoProvider(db *mongo.Database, secret string) *MongoProvider {
	return &MongoProvider{
		users:  db.Collection("users"),
		secret: []byte(secret),
	}
}

// Register creates a new user account.
func (p *MongoProvider) Register(ctx context.Context, username, password string) (models.User, error) {
	var existing models.User
	err := p.users.FindOne(ctx, bson.M{"username": username}).Decode(&existing)
	if err == nil {
		return models.User{}, errors.New("username already in use")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Password:  hashed,
		CreatedAt: time.Now(),
	}
	_, err = p.users.InsertOne(ctx, user)
	return user, err
}

// Login authenticates a user and returns a bearer token for them.
func (p *MongoProvider) Login(ctx context.Context, username, password string) (Credentials, error) {
	var user models.User
	err := p.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return Credentials{}, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.Password) {
		return Credentials{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.Username, p.secret)
	if err != nil {
		return Credentials{}, err
	}

	creds := Credentials{Token: token, Username: user.Username}
	p.mu.Lock()
	p.creds = creds
	p.mu.Unlock()
	return creds, nil
}

func (p *MongoProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.creds = Credentials{}
	p.mu.Unlock()
	return nil
}

func (p *MongoProvider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds.Token
}

func (p *MongoProvider) User() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds.Username
}

func (p *MongoProvider) IsAuthenticated() bool {
	return p.Token() != ""
}
