package handler

import (
	"time"

	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/repository"
)

type registerRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type authResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	DisplayName      *string `json:"display_name,omitempty"`
	PhotoURL         *string `json:"photo_url,omitempty"      validate:"omitempty,url"`
	Phone            *string `json:"phone,omitempty"`
	DateOfBirth      *string `json:"date_of_birth,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	Institute        *string `json:"institute,omitempty"`
	Course           *string `json:"course,omitempty"`
	YearOfStudy      *string `json:"year_of_study,omitempty"`
	EnrollmentNumber *string `json:"enrollment_number,omitempty"`
	Department       *string `json:"department,omitempty"`
	Specialization   *string `json:"specialization,omitempty"`
	Address          *string `json:"address,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	Pincode          *string `json:"pincode,omitempty"`
	Bio              *string `json:"bio,omitempty"`
	Interests        *string `json:"interests,omitempty"`
	Skills           *string `json:"skills,omitempty"`
	Achievements     *string `json:"achievements,omitempty"`
	GithubURL        *string `json:"github_url,omitempty"     validate:"omitempty,url"`
	LinkedinURL      *string `json:"linkedin_url,omitempty"   validate:"omitempty,url"`
	TwitterURL       *string `json:"twitter_url,omitempty"    validate:"omitempty,url"`
	WebsiteURL       *string `json:"website_url,omitempty"    validate:"omitempty,url"`
}

func (r updateProfileRequest) toParams() repository.UpdateProfileParams {
	return repository.UpdateProfileParams{
		DisplayName:      r.DisplayName,
		PhotoURL:         r.PhotoURL,
		Phone:            r.Phone,
		DateOfBirth:      r.DateOfBirth,
		Gender:           r.Gender,
		Institute:        r.Institute,
		Course:           r.Course,
		YearOfStudy:      r.YearOfStudy,
		EnrollmentNumber: r.EnrollmentNumber,
		Department:       r.Department,
		Specialization:   r.Specialization,
		Address:          r.Address,
		City:             r.City,
		State:            r.State,
		Pincode:          r.Pincode,
		Bio:              r.Bio,
		Interests:        r.Interests,
		Skills:           r.Skills,
		Achievements:     r.Achievements,
		GithubURL:        r.GithubURL,
		LinkedinURL:      r.LinkedinURL,
		TwitterURL:       r.TwitterURL,
		WebsiteURL:       r.WebsiteURL,
	}
}

type earnRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required"`
}

type spendRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required"`
}

type spendResponse struct {
	OK bool `json:"ok"`
}

type transactionResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

type profileResponse struct {
	UserID           string                `json:"user_id"`
	Email            string                `json:"email,omitempty"`
	DisplayName      string                `json:"display_name,omitempty"`
	PhotoURL         string                `json:"photo_url,omitempty"`
	Role             string                `json:"role"`
	MembershipStatus string                `json:"membership_status"`
	CreatedAt        string                `json:"created_at"`
	UpdatedAt        string                `json:"updated_at"`
	Phone            string                `json:"phone,omitempty"`
	DateOfBirth      string                `json:"date_of_birth,omitempty"`
	Gender           string                `json:"gender,omitempty"`
	Institute        string                `json:"institute,omitempty"`
	Course           string                `json:"course,omitempty"`
	YearOfStudy      string                `json:"year_of_study,omitempty"`
	EnrollmentNumber string                `json:"enrollment_number,omitempty"`
	Department       string                `json:"department,omitempty"`
	Specialization   string                `json:"specialization,omitempty"`
	Address          string                `json:"address,omitempty"`
	City             string                `json:"city,omitempty"`
	State            string                `json:"state,omitempty"`
	Pincode          string                `json:"pincode,omitempty"`
	Bio              string                `json:"bio,omitempty"`
	Interests        string                `json:"interests,omitempty"`
	Skills           string                `json:"skills,omitempty"`
	Achievements     string                `json:"achievements,omitempty"`
	GithubURL        string                `json:"github_url,omitempty"`
	LinkedinURL      string                `json:"linkedin_url,omitempty"`
	TwitterURL       string                `json:"twitter_url,omitempty"`
	WebsiteURL       string                `json:"website_url,omitempty"`
	Balance          int64                 `json:"balance"`
	History          []transactionResponse `json:"history"`
}

func newTransactionResponse(tx model.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Amount:    tx.Amount,
		Type:      string(tx.Kind),
		Reason:    tx.Reason,
		Timestamp: tx.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func newProfileResponse(rec *model.ProfileRecord) profileResponse {
	history := make([]transactionResponse, len(rec.History))
	for i, tx := range rec.History {
		history[i] = newTransactionResponse(tx)
	}
	return profileResponse{
		UserID:           rec.UserID,
		Email:            rec.Email,
		DisplayName:      rec.DisplayName,
		PhotoURL:         rec.PhotoURL,
		Role:             string(rec.Role),
		MembershipStatus: string(rec.MembershipStatus),
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:        rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Phone:            rec.Phone,
		DateOfBirth:      rec.DateOfBirth,
		Gender:           rec.Gender,
		Institute:        rec.Institute,
		Course:           rec.Course,
		YearOfStudy:      rec.YearOfStudy,
		EnrollmentNumber: rec.EnrollmentNumber,
		Department:       rec.Department,
		Specialization:   rec.Specialization,
		Address:          rec.Address,
		City:             rec.City,
		State:            rec.State,
		Pincode:          rec.Pincode,
		Bio:              rec.Bio,
		Interests:        rec.Interests,
		Skills:           rec.Skills,
		Achievements:     rec.Achievements,
		GithubURL:        rec.GithubURL,
		LinkedinURL:      rec.LinkedinURL,
		TwitterURL:       rec.TwitterURL,
		WebsiteURL:       rec.WebsiteURL,
		Balance:          rec.Balance,
		History:          history,
	}
}
