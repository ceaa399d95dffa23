package controller

import (
	"net/http"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PersonController struct {
	personService service.PersonService
}

func NewPersonController(personService service.PersonService) *PersonController {
	return &PersonController{personService: personService}
}

// CreatePerson
// POST /api/persons
func (ctrl *PersonController) CreatePerson(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.PersonInput
	if err := decodeStrictJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	person, err := ctrl.personService.CreatePerson(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "person")
		return
	}

	log.Info("Person created", map[string]interface{}{
		"person_id": person.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// ListPersons
// GET /api/persons
func (ctrl *PersonController) ListPersons(c *gin.Context) {
	persons, err := ctrl.personService.ListPersons(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "person")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"persons": persons,
		"count":   len(persons),
	})
}

// GetPerson
// GET /api/persons/:id
func (ctrl *PersonController) GetPerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	person, err := ctrl.personService.GetPerson(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "person")
		return
	}
	c.JSON(http.StatusOK, gin.H{"person": person})
}

// UpdatePerson applies the fields present in the body
// PUT /api/persons/:id
func (ctrl *PersonController) UpdatePerson(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.PersonInput
	if err := decodeStrictJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	person, err := ctrl.personService.UpdatePerson(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "person")
		return
	}

	log.Info("Person updated", map[string]interface{}{
		"person_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"person": person})
}

// DeletePerson removes the person with its stories and images
// DELETE /api/persons/:id
func (ctrl *PersonController) DeletePerson(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.personService.DeletePerson(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "person")
		return
	}

	log.Info("Person deleted", map[string]interface{}{
		"person_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Person deleted successfully"})
}
