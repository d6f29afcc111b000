package server

import (
	"net/http"

	"civicfix/backend/auth"
	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func Register(c *gin.Context) {
	var args api.RegisterArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointRegister, err)
		return
	}

	user, err := authService.Register(&args)
	if err != nil {
		log.Errorf("Failed to register user %q: %v", args.Username, err)
		renderError(c, err)
		return
	}

	token, err := authService.GenerateToken(user.ID, user.Role)
	if err != nil {
		log.Errorf("Failed to issue token for %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, api.AuthResponse{Token: token, User: *user})
}

func Login(c *gin.Context) {
	var args api.LoginArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointLogin, err)
		return
	}

	token, user, err := authService.Login(&args)
	if err != nil {
		log.Errorf("Failed login for %q: %v", args.Email, err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.AuthResponse{Token: token, User: *user})
}

func Me(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	user, err := authService.GetUser(actor.ID)
	if err != nil {
		log.Errorf("Failed to look up user %s: %v", actor.ID, err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
