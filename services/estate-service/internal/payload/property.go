package payload

import "github.com/vidyaa00/REMS/services/estate-service/internal/model"

type VisitedRequest struct {
	IDs []string `json:"ids"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type PropertyListResponse struct {
	Properties []*model.PropertyDetail `json:"properties"`
	Pagination Pagination              `json:"pagination"`
}

type UploadImagesResponse struct {
	ImageURLs []string `json:"imageUrls"`
}

// MortgageRequest takes the down payment and interest rate as percentages.
type MortgageRequest struct {
	HomePrice    *float64 `json:"homePrice"    validate:"required,gt=0"`
	DownPayment  *float64 `json:"downPayment"  validate:"required,gte=0,lte=100"`
	InterestRate *float64 `json:"interestRate" validate:"required,gte=0"`
	LoanTerm     *int     `json:"loanTerm"     validate:"required,gt=0,lte=100"`
}
