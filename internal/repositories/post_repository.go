package repositories

import (
	"github.com/nextgendev/talker/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetFeed(page, limit int) ([]models.Post, error)
	GetUserPost(id, userID uint) (*models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func withPostAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Comments", "parent_comment_id IS NULL").
		Preload("Comments.User").
		Preload("Comments.Replies").
		Preload("Comments.Replies.User").
		Preload("Likes").
		Preload("Likes.User")
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post with author, comments (one reply level) and likes
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := withPostAssociations(r.db).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetFeed retrieves a newest-first page of posts with their associations
func (r *PostgresPostRepository) GetFeed(page, limit int) ([]models.Post, error) {
	var posts []models.Post
	offset := (page - 1) * limit
	if err := withPostAssociations(r.db).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetUserPost retrieves a post only when it belongs to the given user
func (r *PostgresPostRepository) GetUserPost(id, userID uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost updates an existing post in PostgreSQL
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost deletes a post by ID from PostgreSQL
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Select("Comments", "Likes").Delete(&models.Post{ID: id}).Error
}
