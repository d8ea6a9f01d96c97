package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/omnisearch/backend/internal/models"
)

// QuickBooksAdapter searches invoices with the QuickBooks query API.
type QuickBooksAdapter struct {
	baseURL string
	rest    *restClient
}

func NewQuickBooksAdapter(baseURL string) *QuickBooksAdapter {
	return &QuickBooksAdapter{baseURL: baseURL, rest: newRESTClient("quickbooks")}
}

func (a *QuickBooksAdapter) Provider() string        { return "quickbooks" }
func (a *QuickBooksAdapter) IntegrationType() string { return models.IntegrationQuickBooks }

func (a *QuickBooksAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	stmt := fmt.Sprintf("select * from Invoice where PrivateNote like '%%%s%%' maxresults 20",
		escapeQueryLiteral(query.Processed))
	searchURL := fmt.Sprintf("%s/company/me/query?query=%s", a.baseURL, url.QueryEscape(stmt))

	var resp struct {
		QueryResponse struct {
			Invoice []struct {
				ID           string  `json:"Id"`
				DocNumber    string  `json:"DocNumber"`
				PrivateNote  string  `json:"PrivateNote"`
				TotalAmt     float64 `json:"TotalAmt"`
				Balance      float64 `json:"Balance"`
				TxnDate      string  `json:"TxnDate"`
				CustomerRef  struct {
					Name string `json:"name"`
				} `json:"CustomerRef"`
			} `json:"Invoice"`
		} `json:"QueryResponse"`
	}
	if err := a.rest.getJSON(ctx, searchURL, cred.AccessToken, &resp); err != nil {
		return nil, err
	}

	payload := models.QuickBooksPayload{Invoices: make([]models.QuickBooksInvoice, 0, len(resp.QueryResponse.Invoice))}
	for _, inv := range resp.QueryResponse.Invoice {
		txnDate, _ := time.Parse("2006-01-02", inv.TxnDate)
		payload.Invoices = append(payload.Invoices, models.QuickBooksInvoice{
			ID:           inv.ID,
			DocNumber:    inv.DocNumber,
			CustomerName: inv.CustomerRef.Name,
			PrivateNote:  inv.PrivateNote,
			TotalAmt:     inv.TotalAmt,
			Balance:      inv.Balance,
			TxnDate:      txnDate,
		})
	}

	return payload, nil
}
