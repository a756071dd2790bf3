package configs

import (
	"log"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransClients struct {
	Snap *snap.Client
	Core *coreapi.Client
}

// NewMidtransClients builds the Snap client for checkout sessions and the
// Core API client for status checks. Anything but production uses the
// sandbox.
func NewMidtransClients(env ENV) *MidtransClients {
	environment := midtrans.Sandbox
	if env.IsProduction() {
		environment = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(env.MidtransServerKey, environment)

	var coreClient coreapi.Client
	coreClient.New(env.MidtransServerKey, environment)

	midtrans.ClientKey = env.MidtransClientKey
	midtrans.ServerKey = env.MidtransServerKey
	midtrans.Environment = environment

	if env.MidtransServerKey == "" {
		log.Println("WARNING: Midtrans server key is empty, payment calls will be rejected")
	}
	log.Println("✅ Midtrans Snap and Core API clients initialized.")
	return &MidtransClients{Snap: &snapClient, Core: &coreClient}
}
