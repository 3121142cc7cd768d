package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

const invoicesCollection = "invoices"

type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{col: db.Collection(invoicesCollection)}
}

// invoiceDoc stores the amount as Decimal128 so no precision is lost.
type invoiceDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	ClientID  primitive.ObjectID   `bson:"client_id"`
	CaseID    primitive.ObjectID   `bson:"case_id"`
	Amount    primitive.Decimal128 `bson:"amount"`
	Status    string               `bson:"status"`
	DueDate   time.Time            `bson:"due_date"`
	PaidAt    *time.Time           `bson:"paid_at"`
	CreatedAt time.Time            `bson:"created_at"`
}

func (d invoiceDoc) toDomain() (*domain.Invoice, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	return &domain.Invoice{
		ID:        d.ID.Hex(),
		ClientID:  hexOrEmpty(d.ClientID),
		CaseID:    hexOrEmpty(d.CaseID),
		Amount:    amount,
		Status:    domain.InvoiceStatus(d.Status),
		DueDate:   d.DueDate.UTC(),
		PaidAt:    utcPtr(d.PaidAt),
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

func newInvoiceDoc(inv *domain.Invoice) (invoiceDoc, error) {
	clientID, err := ref("client id", inv.ClientID)
	if err != nil {
		return invoiceDoc{}, err
	}
	caseID, err := ref("case id", inv.CaseID)
	if err != nil {
		return invoiceDoc{}, err
	}
	amount, err := toDecimal128(inv.Amount)
	if err != nil {
		return invoiceDoc{}, err
	}
	return invoiceDoc{
		ID:        primitive.NewObjectID(),
		ClientID:  clientID,
		CaseID:    caseID,
		Amount:    amount,
		Status:    string(inv.Status),
		DueDate:   inv.DueDate.UTC(),
		PaidAt:    utcPtr(inv.PaidAt),
		CreatedAt: inv.CreatedAt.UTC(),
	}, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	doc, err := newInvoiceDoc(inv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	inv.ID = doc.ID.Hex()
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc invoiceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return doc.toDomain()
}

func (r *InvoiceRepository) List(ctx context.Context, f ports.InvoiceFilter) ([]*domain.Invoice, error) {
	filter := bson.M{}
	if f.ClientID != "" {
		oid, ok := parseID(f.ClientID)
		if !ok {
			return []*domain.Invoice{}, nil
		}
		filter["client_id"] = oid
	}
	if f.CaseID != "" {
		oid, ok := parseID(f.CaseID)
		if !ok {
			return []*domain.Invoice{}, nil
		}
		filter["case_id"] = oid
	}
	timeRange(filter, "created_at", f.CreatedFrom, f.CreatedTo)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs, err := findAll[invoiceDoc](ctx, r.col, filter, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("find invoices: %w", err)
	}
	out := make([]*domain.Invoice, 0, len(docs))
	for _, d := range docs {
		inv, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("invoice %s: %w", d.ID.Hex(), err)
		}
		out = append(out, inv)
	}
	return out, nil
}

// UpdateStatus sets status and paid_at together in a single update.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, paidAt *time.Time) (*domain.Invoice, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(status), "paid_at": utcPtr(paidAt)}}
	var doc invoiceDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("update invoice status: %w", err)
	}
	return doc.toDomain()
}
