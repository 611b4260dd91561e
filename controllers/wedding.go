package controllers

import (
	"errors"
	"net/http"

	"wedding-rsvp-backend/models"
	"wedding-rsvp-backend/services"
	"wedding-rsvp-backend/utils"

	"github.com/gin-gonic/gin"
)

type WeddingController struct {
	store services.Store
}

func NewWeddingController(store services.Store) *WeddingController {
	return &WeddingController{store: store}
}

type weddingInput struct {
	BrideName    string `json:"brideName" binding:"required"`
	GroomName    string `json:"groomName" binding:"required"`
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	Venue        string `json:"venue" binding:"required"`
	VenueAddress string `json:"venueAddress"`
	CoupleName   string `json:"coupleName"`
}

func (wc *WeddingController) Get(c *gin.Context) {
	wedding, err := wc.store.GetWedding(weddingIDParam(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "No wedding details saved yet")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching wedding details")
		return
	}
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"wedding": wedding})
}

func (wc *WeddingController) Update(c *gin.Context) {
	var input weddingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	wedding := &models.Wedding{
		WeddingID:    weddingIDParam(c),
		BrideName:    input.BrideName,
		GroomName:    input.GroomName,
		Date:         input.Date,
		Time:         input.Time,
		Venue:        input.Venue,
		VenueAddress: input.VenueAddress,
		CoupleName:   input.CoupleName,
	}

	if err := wc.store.SaveWedding(wedding); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save wedding details")
		return
	}
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"wedding": wedding})
}
