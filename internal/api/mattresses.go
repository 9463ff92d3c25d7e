package api

import (
	"net/http" // HTTP status codes

	"mattress_money/internal/mattress" // Mattress allocation ledger
	"mattress_money/internal/utils"    // Money parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for mattress creation
type CreateMattressRequest struct {
	Name      string `json:"name"`      // Mattress name
	MaxAmount string `json:"maxAmount"` // Target ceiling
	Amount    string `json:"amount"`    // Initial earmarked amount
}

// CreateMattressHandler creates a named mattress for the signed-in user
func CreateMattressHandler(mattressSvc *mattress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateMattressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		if _, err := mattressSvc.Create(user.Username, mattress.CreateInput{
			Name:      req.Name,
			MaxAmount: req.MaxAmount,
			Amount:    req.Amount,
		}); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// Request struct for a single mattress lookup
type GetMattressRequest struct {
	Name string `json:"name"` // Mattress name, "unallocated" included
}

// GetMattressHandler returns one mattress by name. The virtual unallocated
// mattress resolves to its computed value.
func GetMattressHandler(mattressSvc *mattress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req GetMattressRequest
		if err := c.ShouldBindJSON(&req); err != nil || !utils.ValidNonEmpty(req.Name) {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}

		found, err := mattressSvc.Get(user.Username, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		if found == nil {
			respond(c, http.StatusInternalServerError, CodeDatabaseError, nil)
			return
		}
		respond(c, http.StatusOK, CodeOK, gin.H{"mattress": found})
	}
}

// GetMattressNamesHandler lists the names of the user's stored mattresses
func GetMattressNamesHandler(mattressSvc *mattress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		names, err := mattressSvc.Names(user.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, gin.H{"names": names})
	}
}

// Request struct for a transfer between mattresses
type TransferMattressRequest struct {
	Source      string `json:"source"`      // Source mattress name
	Destination string `json:"destination"` // Destination mattress name
	Amount      string `json:"amount"`      // Amount to move
}

// TransferMattressHandler moves an amount between two mattresses; either side
// may be the virtual unallocated mattress
func TransferMattressHandler(mattressSvc *mattress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req TransferMattressRequest
		if err := c.ShouldBindJSON(&req); err != nil ||
			!utils.ValidNonEmpty(req.Source) || !utils.ValidNonEmpty(req.Destination) {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}
		amount, okAmount := utils.ParseMoney(req.Amount)
		if !okAmount {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		result, err := mattressSvc.Transfer(user.Username, req.Source, req.Destination, amount)
		switch result {
		case mattress.TransferOK:
			respond(c, http.StatusOK, CodeOK, nil)
		case mattress.TransferSourceNotFound, mattress.TransferDestinationNotFound:
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
		default:
			respondError(c, err)
		}
	}
}

// Request struct for a sparse mattress edit
type EditMattressRequest struct {
	ID        uint    `json:"_id"`       // Mattress id
	Name      *string `json:"name"`      // New name, when present
	MaxAmount *string `json:"maxAmount"` // New ceiling, when present
	Amount    *string `json:"amount"`    // New earmarked amount, when present
}

// EditMattressHandler patches the provided fields of a mattress
func EditMattressHandler(mattressSvc *mattress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req EditMattressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		if err := mattressSvc.Edit(user.Username, req.ID, mattress.EditInput{
			Name:      req.Name,
			MaxAmount: req.MaxAmount,
			Amount:    req.Amount,
		}); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// Request struct for a mattress deletion
type DeleteMattressRequest struct {
	ID uint `json:"_id"` // Mattress id
}

// DeleteMattressHandler removes a mattress; its earmarked amount returns to
// the unallocated pool by virtue of no longer being counted
func DeleteMattressHandler(mattressSvc *mattress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req DeleteMattressRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}

		if err := mattressSvc.Delete(user.Username, req.ID); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, nil)
	}
}
