package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

// ErrGateway wraps every failure reported by the payment provider.
var ErrGateway = errors.New("payment gateway error")

type CheckoutLine struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

type CheckoutCustomer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type CheckoutRequest struct {
	Reference string
	Amount    decimal.Decimal
	Lines     []CheckoutLine
	Customer  CheckoutCustomer
	Metadata  *CheckoutMetadata
	FinishURL string
}

type CheckoutSession struct {
	Reference   string `json:"reference"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type TransactionStatus struct {
	Reference     string
	TransactionID string
	Status        string
	FraudStatus   string
	PaymentType   string
	GrossAmount   string
}

type PaymentGateway interface {
	TransactionLookup
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type coreAPI interface {
	CheckTransaction(param string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// Midtrans caps each custom field at 255 characters.
const maxCustomFieldLen = 255

type MidtransGateway struct {
	snap snapAPI
	core coreAPI
}

func NewMidtransGateway(snapClient snapAPI, coreClient coreAPI) *MidtransGateway {
	return &MidtransGateway{snap: snapClient, core: coreClient}
}

func midtransError(op string, merr *midtrans.Error) error {
	if merr.RawError != nil {
		return fmt.Errorf("%w: %s: %s: %v", ErrGateway, op, merr.Message, merr.RawError)
	}
	return fmt.Errorf("%w: %s: %s (status %d)", ErrGateway, op, merr.Message, merr.StatusCode)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// itemDetails converts lines to provider items. Midtrans rejects requests
// whose item sum differs from the gross amount, so nil is returned when
// whole-unit rounding would break that.
func itemDetails(lines []CheckoutLine, gross int64) *[]midtrans.ItemDetails {
	if len(lines) == 0 {
		return nil
	}
	var sum int64
	items := make([]midtrans.ItemDetails, 0, len(lines))
	for _, line := range lines {
		price := line.Price.Round(0).IntPart()
		sum += price * int64(line.Quantity)
		items = append(items, midtrans.ItemDetails{
			ID:    line.ID,
			Name:  truncate(line.Name, 50),
			Price: price,
			Qty:   int32(line.Quantity),
		})
	}
	if sum != gross {
		log.Printf("WARNING: MidtransGateway.CreateCheckout: item sum %d differs from gross %d, sending without items", sum, gross)
		return nil
	}
	return &items
}

func (g *MidtransGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	gross := req.Amount.Round(0).IntPart()
	if gross <= 0 {
		return nil, NewValidationError("amount", "must be positive")
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Reference,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.FirstName,
			LName: req.Customer.LastName,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: itemDetails(req.Lines, gross),
	}
	if req.Metadata != nil {
		snapReq.CustomField1 = req.Metadata.UserID
		snapReq.CustomField2 = strconv.FormatUint(uint64(req.Metadata.AddressID), 10)
		snapReq.CustomField3 = truncate(req.Metadata.Notes, maxCustomFieldLen)
	}
	if req.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	resp, merr := g.snap.CreateTransaction(snapReq)
	if merr != nil {
		log.Printf("ERROR: MidtransGateway.CreateCheckout: %s: %s", req.Reference, merr.Message)
		return nil, midtransError("create transaction", merr)
	}
	if resp == nil || resp.Token == "" {
		return nil, fmt.Errorf("%w: empty snap response for %s", ErrGateway, req.Reference)
	}

	log.Printf("INFO: MidtransGateway.CreateCheckout: snap token issued for %s", req.Reference)
	return &CheckoutSession{Reference: req.Reference, Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) TransactionStatus(ctx context.Context, reference string) (*TransactionStatus, error) {
	resp, merr := g.core.CheckTransaction(reference)
	if merr != nil {
		log.Printf("ERROR: MidtransGateway.TransactionStatus: %s: %s", reference, merr.Message)
		return nil, midtransError("check transaction", merr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: nil status response for %s", ErrGateway, reference)
	}
	if resp.StatusCode == "404" {
		return nil, fmt.Errorf("transaction %s: %w", reference, ErrNotFound)
	}
	if len(resp.StatusCode) > 0 && resp.StatusCode[0] == '5' {
		return nil, fmt.Errorf("%w: server error %s for %s", ErrGateway, resp.StatusCode, reference)
	}

	return &TransactionStatus{
		Reference:     resp.OrderID,
		TransactionID: resp.TransactionID,
		Status:        resp.TransactionStatus,
		FraudStatus:   resp.FraudStatus,
		PaymentType:   resp.PaymentType,
		GrossAmount:   resp.GrossAmount,
	}, nil
}
