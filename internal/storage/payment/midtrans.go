package payment

import (
	"context"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransGateway captures session payments through Midtrans Snap and checks
// notifications against the transaction status API instead of trusting the
// callback body.
type MidtransGateway struct {
	snapClient snap.Client
	coreClient coreapi.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.snapClient.New(serverKey, env)
	g.coreClient.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateOrder(ctx context.Context, orderID string, amount int64, description, customerName, customerEmail string) (token, redirectURL string, err error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    orderID,
				Price: amount,
				Qty:   1,
				Name:  description,
			},
		},
	}

	resp, snapErr := g.snapClient.CreateTransaction(req)
	if snapErr != nil {
		return "", "", fmt.Errorf("snap create transaction: %w", snapErr)
	}
	return resp.Token, resp.RedirectURL, nil
}

// OrderPaid reports whether the order has settled, returning the gateway
// transaction id when it has.
func (g *MidtransGateway) OrderPaid(ctx context.Context, orderID string) (bool, string, error) {
	resp, coreErr := g.coreClient.CheckTransaction(orderID)
	if coreErr != nil {
		return false, "", fmt.Errorf("check transaction: %w", coreErr)
	}
	switch resp.TransactionStatus {
	case "capture", "settlement":
		return true, resp.TransactionID, nil
	default:
		return false, resp.TransactionID, nil
	}
}
