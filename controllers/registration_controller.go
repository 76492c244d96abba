// Package controllers: controllers/registration_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/models"
	"conference-desk/services"
)

// RegistrationController accepts public team registrations.
type RegistrationController struct {
	Registrations services.RegistrationServiceInterface
	Notifier      Notifier
}

// NewRegistrationController creates a RegistrationController. notifier may be nil.
func NewRegistrationController(regs services.RegistrationServiceInterface, notifier Notifier) *RegistrationController {
	return &RegistrationController{Registrations: regs, Notifier: notifier}
}

type memberRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"omitempty,max=20"`
	Gender         string `json:"gender" binding:"omitempty,max=20"`
	FoodPreference string `json:"food_preference" binding:"omitempty,max=40"`
	Accommodation  bool   `json:"accommodation"`
}

type registrationRequest struct {
	TeamName         string          `json:"team_name" binding:"required,max=120"`
	College          string          `json:"college" binding:"omitempty,max=200"`
	WorkshopTrack    string          `json:"workshop_track" binding:"omitempty,workshop_track"`
	CompetitionTrack string          `json:"competition_track" binding:"omitempty,competition_track"`
	AmountPaid       float64         `json:"amount_paid" binding:"gte=0"`
	DirectJoin       bool            `json:"direct_join"`
	Members          []memberRequest `json:"members" binding:"required,min=1,dive"`
}

func (r registrationRequest) toSubmit() services.SubmitRequest {
	req := services.SubmitRequest{
		TeamName:         r.TeamName,
		College:          r.College,
		WorkshopTrack:    models.WorkshopTrack(r.WorkshopTrack),
		CompetitionTrack: models.CompetitionTrack(r.CompetitionTrack),
		AmountPaid:       r.AmountPaid,
		DirectJoin:       r.DirectJoin,
		Members:          make([]services.MemberInput, 0, len(r.Members)),
	}
	for _, m := range r.Members {
		req.Members = append(req.Members, services.MemberInput{
			Name:           m.Name,
			Email:          m.Email,
			Phone:          m.Phone,
			Gender:         m.Gender,
			FoodPreference: m.FoodPreference,
			Accommodation:  m.Accommodation,
		})
	}
	return req
}

// Submit registers a team.
func (rc *RegistrationController) Submit(c *gin.Context) {
	var req registrationRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := rc.Registrations.Submit(c.Request.Context(), req.toSubmit())
	if err != nil {
		respondError(c, "Submit", err)
		return
	}

	logger.Info().Str("registration_id", detail.Registration.ID.Hex()).Msg("Submit: registration created")
	c.JSON(http.StatusCreated, detail)
	if rc.Notifier != nil {
		rc.Notifier.SlotsChanged()
	}
}

// publicMember is a team member as anyone holding the registration id sees
// them: no contact details, participant id or badge.
type publicMember struct {
	Name                string                     `json:"name"`
	Role                models.Role                `json:"role"`
	AccommodationStatus models.AccommodationStatus `json:"accommodation_status"`
	Present             bool                       `json:"present"`
}

type publicRegistration struct {
	Registration models.Registration `json:"registration"`
	Members      []publicMember      `json:"members"`
}

func redact(detail *services.RegistrationDetail) publicRegistration {
	out := publicRegistration{Registration: detail.Registration, Members: make([]publicMember, 0, len(detail.Members))}
	for _, m := range detail.Members {
		out.Members = append(out.Members, publicMember{
			Name:                m.Name,
			Role:                m.Role,
			AccommodationStatus: m.AccommodationStatus,
			Present:             m.Present,
		})
	}
	return out
}

// Get returns a registration's status and team roster. Staff use the admin
// route for contact details and badges.
func (rc *RegistrationController) Get(c *gin.Context) {
	detail, err := rc.Registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetRegistration", err)
		return
	}
	c.JSON(http.StatusOK, redact(detail))
}
