package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/services"
)

// LoadTask loads the :task_id task of the class stored by LoadClass.
// A task of another class is reported as not found.
func LoadTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		class := GetClass(c)
		if class == nil {
			apierrors.InternalError(c, "Class not loaded")
			c.Abort()
			return
		}

		task, err := tasks.FindTask(c.Request.Context(), c.Param("task_id"))
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}
		if task.ClassID != class.ID {
			apierrors.Respond(c, apierrors.Missing("task"))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask returns the task stored by LoadTask
func GetTask(c *gin.Context) *models.Task {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil
	}
	task, _ := value.(*models.Task)
	return task
}
