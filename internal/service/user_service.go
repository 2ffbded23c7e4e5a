package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already in use")
	ErrLastAdmin         = errors.New("agency must keep at least one admin")
	ErrInvalidInvitation = errors.New("invalid or expired invitation")
)

var validRoles = map[string]bool{
	db.RoleAdmin:    true,
	db.RoleManager:  true,
	db.RoleCreator:  true,
	db.RoleReviewer: true,
}

// UserService manages an agency's team: members, roles and the
// invitation flow that brings new members in.
type UserService struct {
	db         *gorm.DB
	notifier   Notifier
	appBaseURL string
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB, notifier Notifier, appBaseURL string) *UserService {
	return &UserService{db: gdb, notifier: notifier, appBaseURL: appBaseURL}
}

// Team lists the agency's members plus its open invitations.
func (s *UserService) Team(user *db.User) ([]db.User, []db.Invitation, error) {
	var members []db.User
	if err := s.db.Where("agency_id = ?", user.AgencyID).
		Preload("Brands").
		Order("name asc").
		Find(&members).Error; err != nil {
		return nil, nil, err
	}

	var invitations []db.Invitation
	if err := s.db.Where("agency_id = ? AND accepted_at IS NULL AND expires_at > ?", user.AgencyID, time.Now()).
		Preload("Inviter").
		Order("created_at desc").
		Find(&invitations).Error; err != nil {
		return nil, nil, err
	}

	return members, invitations, nil
}

// Invite emails a join link for the agency. Managers only.
func (s *UserService) Invite(user *db.User, email, role string) (*db.Invitation, error) {
	if !user.IsManager() {
		return nil, ErrPermissionDenied
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if role == "" {
		role = db.RoleCreator
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	// Only admins can hand out the admin role.
	if role == db.RoleAdmin && !user.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	var existing int64
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	invitation := db.Invitation{
		AgencyID:  user.AgencyID,
		InvitedBy: user.ID,
		Email:     email,
		Role:      role,
		Token:     generateToken(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}

	var agency db.Agency
	s.db.First(&agency, user.AgencyID)
	notify(s.notifier, NotifyTeamInvitation, email, map[string]string{
		"agency_name": agency.Name,
		"inviter":     user.Name,
		"role":        role,
		"accept_url":  fmt.Sprintf("%s/invitations/%s", s.appBaseURL, invitation.Token),
	})

	return &invitation, nil
}

// FindInvitation resolves an open invitation token.
func (s *UserService) FindInvitation(token string) (*db.Invitation, error) {
	if token == "" {
		return nil, ErrInvalidInvitation
	}

	var invitation db.Invitation
	err := s.db.Preload("Agency").Where("token = ?", token).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInvitation
		}
		return nil, err
	}
	if !invitation.IsValid() {
		return nil, ErrInvalidInvitation
	}
	return &invitation, nil
}

// AcceptInvitation turns an open invitation into a member account. The
// password arrives already hashed.
func (s *UserService) AcceptInvitation(token, name, passwordHash string) (*db.User, error) {
	invitation, err := s.FindInvitation(token)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.Model(&db.User{}).Where("email = ?", invitation.Email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	user := db.User{
		AgencyID: invitation.AgencyID,
		Name:     strings.TrimSpace(name),
		Email:    invitation.Email,
		Password: passwordHash,
		Role:     invitation.Role,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(invitation).Update("accepted_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RevokeInvitation withdraws an open invitation. Managers only.
func (s *UserService) RevokeInvitation(user *db.User, id uint) error {
	if !user.IsManager() {
		return ErrPermissionDenied
	}
	result := s.db.Where("id = ? AND agency_id = ? AND accepted_at IS NULL", id, user.AgencyID).
		Delete(&db.Invitation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidInvitation
	}
	return nil
}

// UpdateMember changes a teammate's name, role or brand assignments.
// Managers only; the admin role is admin-granted only.
func (s *UserService) UpdateMember(actor *db.User, id uint, name, role string, brandIDs []uint) (*db.User, error) {
	if !actor.IsManager() {
		return nil, ErrPermissionDenied
	}

	var member db.User
	err := s.db.Where("id = ? AND agency_id = ?", id, actor.AgencyID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := map[string]any{}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		updates["name"] = trimmed
	}
	if role != "" && role != member.Role {
		if !validRoles[role] {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		if (role == db.RoleAdmin || member.Role == db.RoleAdmin) && !actor.IsAdmin() {
			return nil, ErrPermissionDenied
		}
		if member.Role == db.RoleAdmin {
			if err := s.ensureNotLastAdmin(member.AgencyID, member.ID); err != nil {
				return nil, err
			}
		}
		updates["role"] = role
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&member).Updates(updates).Error; err != nil {
				return err
			}
		}
		if brandIDs != nil {
			var brands []db.Brand
			if err := tx.Where("id IN ? AND agency_id = ?", brandIDs, actor.AgencyID).Find(&brands).Error; err != nil {
				return err
			}
			if len(brands) != len(brandIDs) {
				return ErrResourceMismatch
			}
			return tx.Model(&member).Association("Brands").Replace(brands)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Brands").First(&member, member.ID).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember deletes a teammate's account. Managers only; admins can
// only be removed by admins, and never the last one.
func (s *UserService) RemoveMember(actor *db.User, id uint) error {
	if !actor.IsManager() {
		return ErrPermissionDenied
	}
	if actor.ID == id {
		return ErrInvalidState
	}

	var member db.User
	err := s.db.Where("id = ? AND agency_id = ?", id, actor.AgencyID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if member.Role == db.RoleAdmin {
		if !actor.IsAdmin() {
			return ErrPermissionDenied
		}
		if err := s.ensureNotLastAdmin(member.AgencyID, member.ID); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&member).Association("Brands").Clear(); err != nil {
			return err
		}
		return tx.Delete(&member).Error
	})
}

func (s *UserService) ensureNotLastAdmin(agencyID, excludeID uint) error {
	var admins int64
	err := s.db.Model(&db.User{}).
		Where("agency_id = ? AND role = ? AND id <> ?", agencyID, db.RoleAdmin, excludeID).
		Count(&admins).Error
	if err != nil {
		return err
	}
	if admins == 0 {
		return ErrLastAdmin
	}
	return nil
}
