package handler

import (
	"time"

	"peakform/internal/registration/models"
	"peakform/internal/registration/service"
	id "peakform/pkg/domain"
	dErrors "peakform/pkg/domain-errors"
)

// UpdateRequest is the HTTP request body for PATCH /register/{wizardID}.
// Every field is optional; only supplied fields are merged into the draft.
type UpdateRequest struct {
	FirstName       *string   `json:"first_name"`
	LastName        *string   `json:"last_name"`
	Goals           *[]string `json:"goals"`
	Gender          *string   `json:"gender"`
	Age             *string   `json:"age"`
	Height          *string   `json:"height"`
	Weight          *string   `json:"weight"`
	ActivityLevel   *string   `json:"activity_level"`
	FavoriteSport   *string   `json:"favorite_sport"`
	Email           *string   `json:"email"`
	Password        *string   `json:"password"`
	ConfirmPassword *string   `json:"confirm_password"`
}

const maxFieldLen = 256

// Validate enforces size limits only. Semantic validation belongs to the
// step guards and the final gate, which report against the draft as a whole.
func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for name, v := range map[string]*string{
		"first_name":     r.FirstName,
		"last_name":      r.LastName,
		"age":            r.Age,
		"height":         r.Height,
		"weight":         r.Weight,
		"favorite_sport": r.FavoriteSport,
		"email":          r.Email,
		"password":       r.Password,
	} {
		if v != nil && len(*v) > maxFieldLen {
			return dErrors.New(dErrors.CodeValidation, name+" is too long")
		}
	}
	if r.Goals != nil && len(*r.Goals) > 16 {
		return dErrors.New(dErrors.CodeValidation, "too many goals")
	}
	return nil
}

// ToPatch converts the request into a draft patch. Enum fields are cast
// as-is; invalid values are caught by the owning step's guard.
func (r *UpdateRequest) ToPatch() models.Patch {
	p := models.Patch{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Age:             r.Age,
		Height:          r.Height,
		Weight:          r.Weight,
		FavoriteSport:   r.FavoriteSport,
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
	if r.Goals != nil {
		goals := make([]id.Goal, 0, len(*r.Goals))
		for _, g := range *r.Goals {
			goals = append(goals, id.Goal(g))
		}
		p.Goals = &goals
	}
	if r.Gender != nil {
		g := id.Gender(*r.Gender)
		p.Gender = &g
	}
	if r.ActivityLevel != nil {
		a := id.ActivityLevel(*r.ActivityLevel)
		p.ActivityLevel = &a
	}
	return p
}

// WizardResponse is the API view of a wizard: its position, route, and the
// draft minus credentials.
type WizardResponse struct {
	ID        string       `json:"id"`
	Step      string       `json:"step"`
	Route     string       `json:"route,omitempty"`
	Draft     models.Draft `json:"draft"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func toWizardResponse(w *models.Wizard) WizardResponse {
	return WizardResponse{
		ID:        w.ID.String(),
		Step:      w.Step.String(),
		Route:     models.WizardRoutes[w.Step],
		Draft:     w.Draft,
		UpdatedAt: w.UpdatedAt,
	}
}

// SubmitResponse is the HTTP response for a successful submission.
type SubmitResponse struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Redirect    string    `json:"redirect"`
}

func toSubmitResponse(res *service.SubmitResult) SubmitResponse {
	return SubmitResponse{
		UserID:      res.User.UserID.String(),
		AccessToken: res.User.AccessToken,
		ExpiresAt:   res.User.ExpiresAt,
		Redirect:    res.Redirect,
	}
}
