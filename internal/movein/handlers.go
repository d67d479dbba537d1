package movein

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
)

type Handlers struct{}

// Quote computes the itemized move-in bill for an annual rent. Callers may
// pass their own template; omitting it uses the default split.
func (h Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AnnualRent  decimal.Decimal `json:"annualRent"`
		QuotedTotal decimal.Decimal `json:"quotedTotal"`
		Template    []LineTemplate  `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}

	templates := body.Template
	if len(templates) == 0 {
		templates = DefaultTemplate(body.AnnualRent)
	}

	breakdown, err := CalculateBreakdown(body.AnnualRent, body.QuotedTotal, templates, DefaultCurrencyScale)
	if err != nil {
		var ve ValidationError
		if errors.As(err, &ve) {
			api.WriteError(w, http.StatusBadRequest, ve.Code, ve.Message)
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, breakdown)
}
