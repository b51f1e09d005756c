package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"ecofinds/middleware"
	"ecofinds/services"
	"ecofinds/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type envelope map[string]interface{}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSON(w, status, envelope{"success": true, "data": data})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	utils.WriteJSON(w, http.StatusOK, envelope{"success": true, "count": count, "data": data})
}

// respondError maps a service error to its HTTP status.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindInvalidState, services.KindValidation, services.KindConflict:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", utils.RequestIDFrom(r.Context()), r.Method, r.URL.Path, err)
	}
	utils.WriteError(w, status, err.Error())
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst as is.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	return id, err == nil
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authorized")
	}
	return id, ok
}
