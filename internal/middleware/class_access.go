package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/services"
)

// LoadClass loads the class named by the :code parameter. Classes are public, so
// membership is checked by the handlers that need it.
func LoadClass(classes *services.ClassService) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, err := classes.GetClassByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyClass, class)
		c.Next()
	}
}

// GetClass returns the class stored by LoadClass
func GetClass(c *gin.Context) *models.Class {
	value, exists := c.Get(constants.ContextKeyClass)
	if !exists {
		return nil
	}
	class, _ := value.(*models.Class)
	return class
}
