// Package controllers: controllers/validation.go
package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"conference-desk/models"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum rules to gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("workshop_track", func(fl validator.FieldLevel) bool {
			_, err := models.ParseWorkshopTrack(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("competition_track", func(fl validator.FieldLevel) bool {
			_, err := models.ParseCompetitionTrack(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("meal_type", func(fl validator.FieldLevel) bool {
			_, err := models.ParseMealType(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("action_kind", func(fl validator.FieldLevel) bool {
			_, err := models.ParseActionKind(fl.Field().String())
			return err == nil
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON binds the body into dst and writes a 400 with per-field rules on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
	return false
}

// fieldPath drops the top-level struct name: "registrationRequest.members[0].email" -> "members[0].email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
