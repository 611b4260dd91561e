package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wedding-rsvp-backend/services"
	"wedding-rsvp-backend/utils"

	"github.com/gin-gonic/gin"
)

// weddingIDParam resolves the event scope from query or form, defaulting so
// single-wedding deployments need no parameter at all.
func weddingIDParam(c *gin.Context) string {
	if id := c.Query("weddingId"); id != "" {
		return id
	}
	if id := c.PostForm("weddingId"); id != "" {
		return id
	}
	return services.DefaultWeddingID
}

type RSVPController struct {
	svc   *services.RSVPService
	store services.Store
	excel *services.ExcelService
}

func NewRSVPController(svc *services.RSVPService, store services.Store, excel *services.ExcelService) *RSVPController {
	return &RSVPController{svc: svc, store: store, excel: excel}
}

type submitRequest struct {
	WeddingID      string   `json:"weddingId"`
	GuestName      string   `json:"guestName"`
	NumberOfGuests int      `json:"numberOfGuests"`
	Attending      string   `json:"attending"`
	ArrivalDate    string   `json:"arrivalDate"`
	DepartureDate  string   `json:"departureDate"`
	PhoneNumber    string   `json:"phoneNumber"`
	Email          string   `json:"email"`
	Documents      []string `json:"documents"` // base64 payloads
}

// Submit accepts the RSVP form, multipart (documents as file parts) or JSON
// (documents as base64 strings).
func (rc *RSVPController) Submit(c *gin.Context) {
	input := &services.SubmitInput{}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		input.WeddingID = weddingIDParam(c)
		input.GuestName = c.PostForm("guestName")
		input.Attending = c.PostForm("attending")
		input.ArrivalDate = c.PostForm("arrivalDate")
		input.DepartureDate = c.PostForm("departureDate")
		input.PhoneNumber = c.PostForm("phoneNumber")
		input.Email = c.PostForm("email")
		if n, err := strconv.Atoi(c.PostForm("numberOfGuests")); err == nil {
			input.NumberOfGuests = n
		}

		form, err := c.MultipartForm()
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
			return
		}
		if form != nil {
			dir := rc.svc.UploadDir(input.WeddingID)
			if err := os.MkdirAll(dir, 0755); err != nil {
				utils.RespondWithError(c, http.StatusInternalServerError, "Could not prepare upload directory")
				return
			}
			for _, fh := range form.File["documents"] {
				dst := filepath.Join(dir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fh.Filename)))
				if err := c.SaveUploadedFile(fh, dst); err != nil {
					utils.RespondWithError(c, http.StatusInternalServerError, "Could not save uploaded document")
					return
				}
				input.DocumentPaths = append(input.DocumentPaths, filepath.ToSlash(dst))
			}
		}
	} else {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
		input.WeddingID = req.WeddingID
		if input.WeddingID == "" {
			input.WeddingID = weddingIDParam(c)
		}
		input.GuestName = req.GuestName
		input.NumberOfGuests = req.NumberOfGuests
		input.Attending = req.Attending
		input.ArrivalDate = req.ArrivalDate
		input.DepartureDate = req.DepartureDate
		input.PhoneNumber = req.PhoneNumber
		input.Email = req.Email
		input.InlineDocuments = req.Documents
	}

	result, err := rc.svc.Submit(c.Request.Context(), input)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			utils.RespondWithError(c, http.StatusBadRequest, vErr.Message)
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Error processing RSVP: "+err.Error())
		return
	}

	response := gin.H{
		"message":     "RSVP submitted successfully",
		"serialNo":    result.SerialNo,
		"sideEffects": result.SideEffects,
	}
	if result.DriveLink != "" {
		response["driveLink"] = result.DriveLink
	}
	utils.RespondWithJSON(c, http.StatusOK, response)
}

// GetAll lists one wedding's entries, or every wedding's with
// weddingId=all.
func (rc *RSVPController) GetAll(c *gin.Context) {
	weddingID := weddingIDParam(c)

	if weddingID == "all" {
		all, err := rc.store.AllRSVPs()
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching RSVPs")
			return
		}
		utils.RespondWithJSON(c, http.StatusOK, gin.H{"data": all})
		return
	}

	entries, err := rc.store.ListRSVPs(weddingID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching RSVPs")
		return
	}
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"data": entries, "count": len(entries)})
}

func (rc *RSVPController) GetStats(c *gin.Context) {
	stats, err := rc.store.Stats(weddingIDParam(c))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching stats")
		return
	}
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"stats": stats})
}

func (rc *RSVPController) Download(c *gin.Context) {
	weddingID := weddingIDParam(c)
	path := rc.excel.FilePath(weddingID)

	if _, err := os.Stat(path); err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "No spreadsheet exists for this wedding yet")
		return
	}
	c.FileAttachment(path, rc.excel.FileName(weddingID))
}

func (rc *RSVPController) DriveLink(c *gin.Context) {
	weddingID := weddingIDParam(c)

	fileID, link, ok := rc.store.DriveFile(weddingID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Spreadsheet has not been synced to Drive yet"})
		return
	}
	utils.RespondWithJSON(c, http.StatusOK, gin.H{"driveLink": link, "fileId": fileID})
}
