package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const currentUserKey = "__current_user"

type registerRequest struct {
	AgencyName string `json:"agency_name" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
}

// Register creates a new agency with its first admin and signs them in.
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, "Invalid registration payload.") {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	a.db.Model(&db.User{}).Where("email = ?", email).Count(&existing)
	if existing > 0 {
		respondError(c, http.StatusUnprocessableEntity, "That email address is already in use.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create the account.")
		return
	}

	agency := db.Agency{
		Name:         strings.TrimSpace(req.AgencyName),
		StorageQuota: db.DefaultStorageQuota,
	}
	user := db.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
		Role:     db.RoleAdmin,
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&agency).Error; err != nil {
			return err
		}
		user.AgencyID = agency.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create the account.")
		return
	}

	if err := signIn(c, &user); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not start the session.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "agency": agency})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user by email and password.
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "Invalid login payload.") {
		return
	}

	var user db.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "Incorrect email or password.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Incorrect email or password.")
		return
	}

	if err := signIn(c, &user); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not start the session.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "Signed out."})
}

// Me returns the authenticated user with their brand assignments.
func (a *API) Me(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func signIn(c *gin.Context, user *db.User) error {
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	return session.Save()
}

// AuthRequired rejects unauthenticated requests and loads the session's
// user, with brand assignments, into the request context.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			respondError(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		var user db.User
		if err := a.db.Preload("Brands").First(&user, userID).Error; err != nil {
			session.Clear()
			session.Save()
			respondError(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *db.User {
	value, _ := c.Get(currentUserKey)
	user, _ := value.(*db.User)
	return user
}
