package payment

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MethodCash         = "cash"
	MethodMobileMoney  = "mobile_money"
	MethodBankTransfer = "bank_transfer"
	MethodCheque       = "cheque"
)

// Payment records money received against a lease. RentID or PropertyID may
// be absent individually but at least one reference is required;
// OrganizationID is derived from the referenced record, never taken from
// the payload.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyID     primitive.ObjectID `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	RentID         primitive.ObjectID `bson:"rentId,omitempty" json:"rentId,omitempty"`
	InvoiceID      string             `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Amount         float64            `bson:"amount" json:"amount"`
	PaymentDate    time.Time          `bson:"paymentDate" json:"paymentDate"`
	PaymentMethod  string             `bson:"paymentMethod" json:"paymentMethod"`
	Reference      string             `bson:"reference,omitempty" json:"reference,omitempty"`
	RecordedBy     primitive.ObjectID `bson:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

type RecordRequest struct {
	PropertyID    string    `json:"propertyId"`
	RentID        string    `json:"rentId"`
	InvoiceID     string    `json:"invoiceId"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentMethod string    `json:"paymentMethod"`
	Reference     string    `json:"reference"`
}
