package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnap struct {
	last *snap.Request
	resp *snap.Response
	err  *midtrans.Error
}

func (s *stubSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	s.last = req
	return s.resp, s.err
}

type stubCore struct {
	resp *coreapi.TransactionStatusResponse
	err  *midtrans.Error
}

func (c *stubCore) CheckTransaction(string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
	return c.resp, c.err
}

func TestMidtransGateway_CreateCheckout(t *testing.T) {
	s := &stubSnap{resp: &snap.Response{Token: "tok", RedirectURL: "https://app.midtrans/tok"}}
	g := NewMidtransGateway(s, &stubCore{})

	session, err := g.CreateCheckout(context.Background(), CheckoutRequest{
		Reference: "CART-1",
		Amount:    dec("150000"),
		Lines: []CheckoutLine{
			{ID: "1", Name: "Mug", Price: dec("50000"), Quantity: 2},
			{ID: shippingLineID, Name: "Shipping", Price: dec("50000"), Quantity: 1},
		},
		Customer:  CheckoutCustomer{FirstName: "Jane", Email: "jane@example.com"},
		Metadata:  &CheckoutMetadata{UserID: "user-1", AddressID: 42, Notes: strings.Repeat("n", 300)},
		FinishURL: "https://shop.example/finish",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, "CART-1", session.Reference)

	req := s.last
	require.NotNil(t, req)
	assert.Equal(t, int64(150000), req.TransactionDetails.GrossAmt)
	assert.Equal(t, "user-1", req.CustomField1)
	assert.Equal(t, "42", req.CustomField2)
	assert.Len(t, req.CustomField3, maxCustomFieldLen)
	require.NotNil(t, req.Items)
	assert.Len(t, *req.Items, 2)
	require.NotNil(t, req.Callbacks)
	assert.Equal(t, "https://shop.example/finish", req.Callbacks.Finish)
}

func TestMidtransGateway_CreateCheckoutErrors(t *testing.T) {
	s := &stubSnap{err: &midtrans.Error{Message: "bad request", StatusCode: 400}}
	g := NewMidtransGateway(s, &stubCore{})

	_, err := g.CreateCheckout(context.Background(), CheckoutRequest{Reference: "ORD-1", Amount: dec("0.2")})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = g.CreateCheckout(context.Background(), CheckoutRequest{Reference: "ORD-1", Amount: dec("10")})
	assert.True(t, errors.Is(err, ErrGateway))

	s.err = nil
	s.resp = &snap.Response{}
	_, err = g.CreateCheckout(context.Background(), CheckoutRequest{Reference: "ORD-1", Amount: dec("10")})
	assert.True(t, errors.Is(err, ErrGateway))
}

func TestItemDetails_DropsItemsOnRoundingMismatch(t *testing.T) {
	lines := []CheckoutLine{{ID: "1", Name: "Pen", Price: decimal.RequireFromString("10.40"), Quantity: 3}}
	// 3 x 10 = 30 but the charged amount rounds to 31
	assert.Nil(t, itemDetails(lines, 31))

	items := itemDetails(lines, 30)
	require.NotNil(t, items)
	assert.Equal(t, int64(10), (*items)[0].Price)
	assert.Nil(t, itemDetails(nil, 30))
}

func TestMidtransGateway_TransactionStatus(t *testing.T) {
	core := &stubCore{resp: &coreapi.TransactionStatusResponse{
		StatusCode:        "200",
		OrderID:           "ORD-9",
		TransactionID:     "tx-9",
		TransactionStatus: "settlement",
		PaymentType:       "bank_transfer",
	}}
	g := NewMidtransGateway(&stubSnap{}, core)

	status, err := g.TransactionStatus(context.Background(), "ORD-9")
	require.NoError(t, err)
	assert.Equal(t, "settlement", status.Status)
	assert.Equal(t, "tx-9", status.TransactionID)

	core.resp.StatusCode = "404"
	_, err = g.TransactionStatus(context.Background(), "ORD-9")
	assert.True(t, errors.Is(err, ErrNotFound))

	core.resp.StatusCode = "503"
	_, err = g.TransactionStatus(context.Background(), "ORD-9")
	assert.True(t, errors.Is(err, ErrGateway))

	core.err = &midtrans.Error{Message: "timeout", RawError: errors.New("dial tcp: i/o timeout")}
	_, err = g.TransactionStatus(context.Background(), "ORD-9")
	assert.True(t, errors.Is(err, ErrGateway))
}
