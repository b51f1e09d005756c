package controllers

import (
	"net/http"

	"ecofinds/models"
	"ecofinds/services"
	"ecofinds/utils"
)

// UserController handles registration, login and the profile.
type UserController struct {
	auth *services.AuthService
}

// NewUserController creates a new UserController
func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{auth: auth}
}

type sessionResponse struct {
	*models.User
	Token string `json:"token"`
}

// Register creates an account and returns it with a token
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeBody(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	session, err := uc.auth.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, sessionResponse{User: session.User, Token: session.Token})
}

// Login authenticates a user and returns a JWT
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeBody(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	session, err := uc.auth.Login(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sessionResponse{User: session.User, Token: session.Token})
}

// GetProfile returns the authenticated user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := uc.auth.Me(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// UpdateProfile updates the caller's profile
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in services.ProfileUpdate
	if err := decodeBody(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := uc.auth.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}
