package api

import (
	"net/http" // HTTP status codes

	"mattress_money/internal/budget" // Budget period resolver
	"mattress_money/internal/utils"  // Date parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// NewBudgetHandler creates a recurring budget template
func NewBudgetHandler(budgetSvc *budget.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req budget.TemplateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		if _, err := budgetSvc.CreateTemplate(user.Username, req); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// Request struct for a budget period lookup
type GetBudgetRequest struct {
	BudgetName string `json:"budgetName"` // Template name
	Date       string `json:"date"`       // Any date inside the wanted period
}

// GetBudgetHandler resolves the budget period containing the requested date,
// materializing it from the template on first request, and returns the
// instance with the period's transactions and per-line aggregation
func GetBudgetHandler(budgetSvc *budget.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req GetBudgetRequest
		if err := c.ShouldBindJSON(&req); err != nil || !utils.ValidNonEmpty(req.BudgetName) {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}
		date, okDate := utils.ParseDateUTC(req.Date)
		if !okDate {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		instance, transactions, err := budgetSvc.Get(user.Username, req.BudgetName, date)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, gin.H{
			"budget":       instance,
			"transactions": transactions,
			"summary":      budget.Summarize(instance, transactions),
		})
	}
}

// GetBudgetNamesHandler lists the names of the user's budget templates
func GetBudgetNamesHandler(budgetSvc *budget.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		names, err := budgetSvc.TemplateNames(user.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, gin.H{"budgetNames": names})
	}
}
